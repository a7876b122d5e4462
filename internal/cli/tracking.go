package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/starford/timer/internal"
	"github.com/starford/timer/internal/tracker"
)

func (r *runner) startCommand() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "Start tracking time on a project",
		ArgsUsage: "PROJECT [+TAG...]",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			if cmd.NArg() < 1 {
				return fmt.Errorf("project name is required")
			}
			args := cmd.Args().Slice()
			tags, err := parseTagArgs(args[1:])
			if err != nil {
				return err
			}
			f, err := app.Tracker.Start(ctx, args[0], tags)
			if err != nil {
				return err
			}
			printStarted(app.Out, f)
			return nil
		}),
	}
}

func (r *runner) stopCommand() *cli.Command {
	return &cli.Command{
		Name:  "stop",
		Usage: "Stop the current frame",
		Action: r.action(func(ctx context.Context, _ *cli.Command, app *internal.App) error {
			f, err := app.Tracker.Stop(ctx)
			if err != nil {
				return err
			}
			printStopped(app.Out, f, app.Reports.Now())
			return nil
		}),
	}
}

func (r *runner) statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show current tracking status",
		Action: r.action(func(ctx context.Context, _ *cli.Command, app *internal.App) error {
			f, err := app.Tracker.Status(ctx)
			if err != nil {
				return err
			}
			printStatus(app.Out, f, app.Reports.Now())
			return nil
		}),
	}
}

func (r *runner) cancelCommand() *cli.Command {
	return &cli.Command{
		Name:  "cancel",
		Usage: "Cancel (delete) the current frame",
		Action: r.action(func(ctx context.Context, _ *cli.Command, app *internal.App) error {
			f, err := app.Tracker.Cancel(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Cancelled %s\n", f.Label())
			return nil
		}),
	}
}

func (r *runner) restartCommand() *cli.Command {
	return &cli.Command{
		Name:  "restart",
		Usage: "Restart the last stopped frame",
		Action: r.action(func(ctx context.Context, _ *cli.Command, app *internal.App) error {
			f, err := app.Tracker.Restart(ctx)
			if err != nil {
				return err
			}
			printStarted(app.Out, f)
			return nil
		}),
	}
}

func (r *runner) switchCommand() *cli.Command {
	return &cli.Command{
		Name:  "switch",
		Usage: "Sync timer with current git context (project=repo, tag=branch)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress output (for shell hooks)"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Keep syncing on every checkout until interrupted"},
		},
		Action: r.action(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			quiet := cmd.Bool("quiet")
			report := func(res *tracker.SwitchResult) {
				if quiet || !res.Changed() {
					return
				}
				if res.Stopped != nil {
					printStopped(app.Out, res.Stopped, app.Reports.Now())
				}
				printStarted(app.Out, res.Started)
			}

			res, err := app.Tracker.Sync(ctx, app.Source)
			if err != nil {
				return err
			}
			if res != nil {
				report(res)
			}
			if !cmd.Bool("watch") {
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.WatchBranches(ctx, report)
		}),
	}
}
