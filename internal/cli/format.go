package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/starford/timer/internal/models"
	"github.com/starford/timer/internal/report"
)

const clockLayout = "15:04"

func printStarted(w io.Writer, f *models.Frame) {
	fmt.Fprintf(w, "Started %s\n", f.Label())
}

func printStopped(w io.Writer, f *models.Frame, now time.Time) {
	fmt.Fprintf(w, "Stopped %s (%s)\n", f.Label(), models.FormatDuration(f.Duration(now)))
}

func printStatus(w io.Writer, f *models.Frame, now time.Time) {
	if f == nil {
		fmt.Fprintln(w, "Not tracking")
		return
	}
	fmt.Fprintf(w, "%s (%s), started %s\n",
		f.Label(), models.FormatDuration(f.Duration(now)), humanize.RelTime(f.Start, now, "ago", "from now"))
}

// printFrame renders "[id] project +tags (duration) HH:MM - HH:MM".
func printFrame(w io.Writer, f *models.Frame, now time.Time, loc *time.Location) {
	end := "now"
	if f.End != nil {
		end = f.End.In(loc).Format(clockLayout)
	}
	fmt.Fprintf(w, "[%d] %s (%s) %s - %s\n",
		f.ID, f.Label(), models.FormatDuration(f.Duration(now)), f.Start.In(loc).Format(clockLayout), end)
}

func printSummary(w io.Writer, sum *report.Summary) {
	if sum.Empty {
		fmt.Fprintln(w, "No frames found")
		return
	}
	switch sum.GroupBy {
	case report.ByTag:
		fmt.Fprintln(w, "By tag:")
		for _, g := range sum.Groups {
			name := g.Name
			if name != report.Untagged {
				name = "+" + name
			}
			fmt.Fprintf(w, "  %s %s\n", name, models.FormatDuration(g.Duration))
		}
	default:
		fmt.Fprintln(w, "By project:")
		for _, g := range sum.Groups {
			fmt.Fprintf(w, "  %s %s\n", g.Name, models.FormatDuration(g.Duration))
		}
		fmt.Fprintf(w, "Total: %s\n", models.FormatDuration(sum.Total))
	}
}

func printNames(w io.Writer, names []string, prefix, empty string) {
	if len(names) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for _, n := range names {
		fmt.Fprintln(w, prefix+n)
	}
}
