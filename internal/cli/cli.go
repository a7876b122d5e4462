// Package cli defines the timer command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/timer/internal"
	"github.com/starford/timer/internal/daterange"
	"github.com/starford/timer/internal/models"
	pkgconfig "github.com/starford/timer/pkg/config"
)

// runner opens an App per command invocation. opts are appended after the
// ones derived from flags, so tests can swap the clock or source control.
type runner struct {
	opts []internal.Option
}

// New builds the root command. Every subcommand opens the frame database
// afresh, does one thing and closes it.
func New(version string, opts ...internal.Option) *cli.Command {
	r := &runner{opts: opts}
	return &cli.Command{
		Name:    "timer",
		Usage:   "Track your time",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the frames database",
				Sources: cli.EnvVars(internal.EnvDBPath),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars(internal.EnvConfigFile),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			r.startCommand(),
			r.stopCommand(),
			r.statusCommand(),
			r.logCommand(),
			r.cancelCommand(),
			r.deleteCommand(),
			r.projectsCommand(),
			r.tagsCommand(),
			r.reportCommand(),
			r.editCommand(),
			r.restartCommand(),
			r.exportCommand(),
			r.switchCommand(),
			r.serveCommand(version),
			r.mcpCommand(version),
		},
	}
}

// Run executes the command tree with args and returns the process exit
// code. Failures are printed to stderr as "error: <msg>".
func Run(ctx context.Context, cmd *cli.Command, args []string, stderr io.Writer) int {
	if err := cmd.Run(ctx, args); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return 1
	}
	return 0
}

// loadConfig layers defaults, the YAML file and flags. An explicit
// --config must exist; the per-user default file is optional.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	if path := cmd.String("config"); path != "" {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, err
		}
	} else if _, err := pkgconfig.LoadOptional(internal.DefaultConfigFile(), cfg); err != nil {
		return nil, err
	}

	if db := cmd.String("db"); db != "" {
		cfg.SQLite.Path = db
	}
	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (r *runner) open(cmd *cli.Command) (*internal.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return internal.Open(append([]internal.Option{internal.WithConfig(cfg)}, r.opts...)...)
}

// action adapts fn into a cli.ActionFunc that owns the App lifetime.
func (r *runner) action(fn func(ctx context.Context, cmd *cli.Command, app *internal.App) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		app, err := r.open(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(ctx, cmd, app)
	}
}

// parseTagArgs accepts words of the form "+tag".
func parseTagArgs(words []string) ([]string, error) {
	for _, w := range words {
		if !strings.HasPrefix(w, "+") {
			return nil, fmt.Errorf("tags must start with +: %s", w)
		}
	}
	return models.ParseTags(words), nil
}

func parseID(cmd *cli.Command) (int64, error) {
	if cmd.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one frame ID")
	}
	id, err := strconv.ParseInt(cmd.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame ID: %s", cmd.Args().First())
	}
	return id, nil
}

func rangeFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Usage: "Start date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "to", Aliases: []string{"t"}, Usage: "End date (YYYY-MM-DD)"},
		&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Ignore the date window"},
	}, extra...)
}

func rangeRequest(cmd *cli.Command) (daterange.Request, error) {
	req := daterange.Request{All: cmd.Bool("all")}
	for _, p := range []struct {
		flag string
		dst  **daterange.Date
	}{{"from", &req.From}, {"to", &req.To}} {
		if v := cmd.String(p.flag); v != "" {
			d, err := daterange.ParseDate(v)
			if err != nil {
				return req, err
			}
			*p.dst = &d
		}
	}
	return req, nil
}

// Main runs the command tree against os.Args and exits.
func Main(version string) {
	os.Exit(Run(context.Background(), New(version), os.Args, os.Stderr))
}
