package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/timer/internal/export"
	"github.com/starford/timer/internal/report"
	"github.com/starford/timer/internal/testutil"
	"github.com/starford/timer/internal/tracker"
)

func testServer(t *testing.T) (*Server, *testutil.Clock) {
	t.Helper()
	db := testutil.TestDB(t)
	clock := testutil.NewClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))
	svc := tracker.NewService(db, clock.Now, time.UTC, nil)
	eng := report.New(db, clock.Now, time.UTC)
	return New(svc, eng, "test"), clock
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so dispatch to the
	// handler functions.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "timer_status":
		result, err = srv.status(ctx, req)
	case "timer_start":
		result, err = srv.start(ctx, req)
	case "timer_stop":
		result, err = srv.stop(ctx, req)
	case "timer_log":
		result, err = srv.frameLog(ctx, req)
	case "timer_report":
		result, err = srv.summary(ctx, req)
	default:
		require.FailNow(t, "unknown tool", name)
	}

	require.NoError(t, err, "tool %s", name)
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestStartStatusStop(t *testing.T) {
	srv, clock := testServer(t)

	assert.Equal(t, "Not tracking", resultText(callTool(t, srv, "timer_status", nil)))

	r := callTool(t, srv, "timer_start", map[string]interface{}{
		"project": "timer",
		"tags":    "+review backend",
	})
	assert.Equal(t, "Started timer +review +backend", resultText(r))

	clock.Advance(90 * time.Second)
	assert.Equal(t, "Tracking timer +review +backend since 09:00 (1m 30s)",
		resultText(callTool(t, srv, "timer_status", nil)))

	assert.Equal(t, "Stopped timer +review +backend (1m 30s)", resultText(callTool(t, srv, "timer_stop", nil)))
}

func TestStartErrors(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "timer_start", map[string]interface{}{})
	assert.True(t, r.IsError, "expected error without project")

	callTool(t, srv, "timer_start", map[string]interface{}{"project": "a"})
	r = callTool(t, srv, "timer_start", map[string]interface{}{"project": "b"})
	assert.True(t, r.IsError)
	assert.Equal(t, "already tracking - stop first", resultText(r))
}

func TestStopIdle(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "timer_stop", nil)
	assert.True(t, r.IsError)
	assert.Equal(t, "not tracking", resultText(r))
}

func TestLog(t *testing.T) {
	srv, clock := testServer(t)

	assert.Equal(t, "No frames found", resultText(callTool(t, srv, "timer_log", nil)))

	callTool(t, srv, "timer_start", map[string]interface{}{"project": "a"})
	clock.Advance(time.Minute)
	callTool(t, srv, "timer_stop", nil)

	r := callTool(t, srv, "timer_log", map[string]interface{}{"all": true})
	var recs []export.Record
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].Project)
	assert.Equal(t, int64(60), recs[0].DurationSeconds)

	r = callTool(t, srv, "timer_log", map[string]interface{}{"from": "2025-01-10", "to": "2025-01-05"})
	assert.Equal(t, "No frames found", resultText(r), "inverted window")

	r = callTool(t, srv, "timer_log", map[string]interface{}{"from": "01/10/2025"})
	assert.True(t, r.IsError, "expected error for bad date")
}

func TestReportByTag(t *testing.T) {
	srv, clock := testServer(t)

	callTool(t, srv, "timer_start", map[string]interface{}{"project": "a", "tags": "x y"})
	clock.Advance(10 * time.Minute)
	callTool(t, srv, "timer_stop", nil)

	r := callTool(t, srv, "timer_report", map[string]interface{}{"by": "tag"})
	var sum struct {
		Groups []struct {
			Name    string `json:"name"`
			Seconds int64  `json:"duration_seconds"`
		} `json:"groups"`
		Total int64 `json:"total_seconds"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &sum), resultText(r))
	require.Len(t, sum.Groups, 2)
	assert.Equal(t, int64(600), sum.Total)
	for _, g := range sum.Groups {
		assert.Equal(t, int64(600), g.Seconds, g.Name)
	}

	r = callTool(t, srv, "timer_report", map[string]interface{}{"by": "client"})
	assert.True(t, r.IsError, "expected error for unknown grouping")
}

func TestUsageResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readUsageResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, contents)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "usage resource = %+v", contents)
	assert.Equal(t, usageURI, tc.URI)
	assert.Contains(t, tc.Text, "timer_report")
}
