package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/timer/internal"
	"github.com/starford/timer/internal/export"
	"github.com/starford/timer/internal/report"
	"github.com/starford/timer/internal/tracker"
)

func (r *runner) logCommand() *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Show recent frames",
		Flags: rangeFlags(),
		Action: r.action(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			req, err := rangeRequest(cmd)
			if err != nil {
				return err
			}
			frames, err := app.Reports.Log(ctx, req)
			if err != nil {
				return err
			}
			if len(frames) == 0 {
				fmt.Fprintln(app.Out, "No frames found")
				return nil
			}
			now, loc := app.Reports.Now(), app.Reports.Location()
			for i := range frames {
				printFrame(app.Out, &frames[i], now, loc)
			}
			return nil
		}),
	}
}

func (r *runner) reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Show time report aggregated by project or tag",
		Flags: rangeFlags(
			&cli.BoolFlag{Name: "by-tag", Usage: "Group by tag instead of project"},
		),
		Action: r.action(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			req, err := rangeRequest(cmd)
			if err != nil {
				return err
			}
			by := report.ByProject
			if cmd.Bool("by-tag") {
				by = report.ByTag
			}
			sum, err := app.Reports.Report(ctx, req, by)
			if err != nil {
				return err
			}
			printSummary(app.Out, sum)
			return nil
		}),
	}
}

func (r *runner) exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export frames to JSON or CSV, oldest first",
		Flags: rangeFlags(
			&cli.StringFlag{Name: "format", Usage: "Output format (json or csv), defaults to export.format from config"},
		),
		Action: r.action(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			name := cmd.String("format")
			if name == "" {
				name = app.Config.Export.Format
			}
			format, err := export.ParseFormat(name)
			if err != nil {
				return err
			}
			req, err := rangeRequest(cmd)
			if err != nil {
				return err
			}
			// Export covers every frame unless a window was asked for.
			if req.From == nil && req.To == nil {
				req.All = true
			}
			frames, err := app.Reports.Chronological(ctx, req)
			if err != nil {
				return err
			}
			return export.Write(app.Out, format, export.Records(frames, app.Reports.Now(), app.Reports.Location()))
		}),
	}
}

func (r *runner) projectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "List all projects",
		Action: r.action(func(ctx context.Context, _ *cli.Command, app *internal.App) error {
			names, err := app.Reports.Projects(ctx)
			if err != nil {
				return err
			}
			printNames(app.Out, names, "", "No projects found")
			return nil
		}),
	}
}

func (r *runner) tagsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List all tags",
		Action: r.action(func(ctx context.Context, _ *cli.Command, app *internal.App) error {
			names, err := app.Reports.Tags(ctx)
			if err != nil {
				return err
			}
			printNames(app.Out, names, "+", "No tags found")
			return nil
		}),
	}
}

func (r *runner) editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit an existing frame",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "New project name"},
			&cli.StringFlag{Name: "tags", Aliases: []string{"t"}, Usage: "New tags, e.g. \"+a +b\"; empty clears them"},
			&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Usage: "New start time (HH:MM or YYYY-MM-DD HH:MM)"},
			&cli.StringFlag{Name: "end", Aliases: []string{"e"}, Usage: "New end time (HH:MM or YYYY-MM-DD HH:MM)"},
		},
		Action: r.action(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			id, err := parseID(cmd)
			if err != nil {
				return err
			}
			req := tracker.EditRequest{ID: id}
			if cmd.IsSet("project") {
				v := cmd.String("project")
				req.Project = &v
			}
			if cmd.IsSet("tags") {
				tags, err := parseTagArgs(strings.Fields(cmd.String("tags")))
				if err != nil {
					return err
				}
				req.Tags = &tags
			}
			if cmd.IsSet("start") {
				v := cmd.String("start")
				req.Start = &v
			}
			if cmd.IsSet("end") {
				v := cmd.String("end")
				req.End = &v
			}
			if _, err := app.Tracker.Edit(ctx, req); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Updated frame %d\n", id)
			return nil
		}),
	}
}

func (r *runner) deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a frame by ID",
		ArgsUsage: "ID",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			id, err := parseID(cmd)
			if err != nil {
				return err
			}
			if err := app.Tracker.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Deleted frame %d\n", id)
			return nil
		}),
	}
}
