package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/timer/internal"
	"github.com/starford/timer/internal/mcpserver"
)

func (r *runner) serveCommand(version string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the frame API over HTTP for menubar and editor companions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (host:port), defaults to app.http from config"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr := cmd.String("addr"); addr != "" {
				if err := setAddress(&cfg.App.HTTP, addr); err != nil {
					return err
				}
			}

			// The server logs JSON to stdout like any other service.
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: cfg.App.LogLevel,
			}))
			opts := append([]internal.Option{internal.WithConfig(cfg), internal.WithLogger(logger)}, r.opts...)
			app, err := internal.Open(opts...)
			if err != nil {
				return err
			}
			defer app.Close()

			app.Logger.Info("timer serve", slog.String("version", version))
			return app.Serve(ctx)
		},
	}
}

func setAddress(c *internal.HTTPConfig, addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port %q", port)
	}
	c.Host, c.Port = host, p
	return c.Validate()
}

func (r *runner) mcpCommand(version string) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve timer tools over MCP on stdin/stdout",
		Action: r.action(func(_ context.Context, _ *cli.Command, app *internal.App) error {
			app.Logger.Info("mcp server starting", slog.String("db", app.Config.SQLite.Path))
			return mcpserver.New(app.Tracker, app.Reports, version).ServeStdio()
		}),
	}
}
