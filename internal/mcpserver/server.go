// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes timer tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/timer/internal/daterange"
	"github.com/starford/timer/internal/export"
	"github.com/starford/timer/internal/models"
	"github.com/starford/timer/internal/report"
	"github.com/starford/timer/internal/tracker"
)

const usageURI = "timer://usage"

// Server wraps the MCP server with timer tools.
type Server struct {
	mcp     *server.MCPServer
	tracker *tracker.Service
	reports *report.Engine
}

// New creates a new MCP server with all timer tools registered.
func New(t *tracker.Service, r *report.Engine, version string) *Server {
	s := &Server{tracker: t, reports: r}

	s.mcp = server.NewMCPServer(
		"timer",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("timer_status",
		mcp.WithDescription("Show the frame currently being tracked, if any."),
	), s.status)

	s.mcp.AddTool(mcp.NewTool("timer_start",
		mcp.WithDescription("Start tracking time on a project. Fails if a frame is already open."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("tags", mcp.Description("Space separated tags, e.g. \"+review +backend\"")),
	), s.start)

	s.mcp.AddTool(mcp.NewTool("timer_stop",
		mcp.WithDescription("Stop the frame currently being tracked."),
	), s.stop)

	s.mcp.AddTool(mcp.NewTool("timer_log",
		mcp.WithDescription("List frames, newest first. Defaults to today."),
		mcp.WithString("from", mcp.Description("First day, YYYY-MM-DD")),
		mcp.WithString("to", mcp.Description("Last day, YYYY-MM-DD")),
		mcp.WithBoolean("all", mcp.Description("Ignore the date window")),
	), s.frameLog)

	s.mcp.AddTool(mcp.NewTool("timer_report",
		mcp.WithDescription("Total tracked time grouped by project or tag. Defaults to today."),
		mcp.WithString("by", mcp.Description("\"project\" (default) or \"tag\"")),
		mcp.WithString("from", mcp.Description("First day, YYYY-MM-DD")),
		mcp.WithString("to", mcp.Description("Last day, YYYY-MM-DD")),
		mcp.WithBoolean("all", mcp.Description("Ignore the date window")),
	), s.summary)

	s.mcp.AddResource(
		mcp.NewResource(usageURI, "timer usage guide",
			mcp.WithResourceDescription("Frame model, tool arguments and date window rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readUsageResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) status(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := s.tracker.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if f == nil {
		return mcp.NewToolResultText("Not tracking"), nil
	}
	now := s.reports.Now()
	return mcp.NewToolResultText(fmt.Sprintf("Tracking %s since %s (%s)",
		f.Label(), f.Start.In(s.reports.Location()).Format("15:04"), models.FormatDuration(f.Duration(now)))), nil
}

func (s *Server) start(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := models.ParseTags(strings.Fields(req.GetString("tags", "")))
	f, err := s.tracker.Start(ctx, project, tags)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Started " + f.Label()), nil
}

func (s *Server) stop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := s.tracker.Stop(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Stopped %s (%s)",
		f.Label(), models.FormatDuration(f.Duration(s.reports.Now())))), nil
}

func (s *Server) frameLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rng, err := rangeRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	frames, err := s.reports.Log(ctx, rng)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(frames) == 0 {
		return mcp.NewToolResultText("No frames found"), nil
	}
	out, _ := json.MarshalIndent(export.Records(frames, s.reports.Now(), s.reports.Location()), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) summary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	by, err := report.ParseGroupBy(req.GetString("by", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rng, err := rangeRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := s.reports.Report(ctx, rng, by)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sum.Empty {
		return mcp.NewToolResultText("No frames found"), nil
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readUsageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      usageURI,
			MIMEType: "text/markdown",
			Text:     UsageGuide,
		},
	}, nil
}

func rangeRequest(req mcp.CallToolRequest) (daterange.Request, error) {
	rng := daterange.Request{All: req.GetBool("all", false)}
	if v := req.GetString("from", ""); v != "" {
		d, err := daterange.ParseDate(v)
		if err != nil {
			return rng, err
		}
		rng.From = &d
	}
	if v := req.GetString("to", ""); v != "" {
		d, err := daterange.ParseDate(v)
		if err != nil {
			return rng, err
		}
		rng.To = &d
	}
	return rng, nil
}
