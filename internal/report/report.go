// Package report answers read-only questions about recorded frames: the
// frame log for a date window and duration totals grouped by project or tag.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/starford/timer/internal/daterange"
	"github.com/starford/timer/internal/models"
	"github.com/starford/timer/internal/store"
)

// Untagged is the bucket for frames without tags in a by-tag report.
const Untagged = "(untagged)"

// Reader is the subset of store.Frames the engine needs.
type Reader interface {
	Scan(ctx context.Context, opts store.ScanOptions) ([]models.Frame, error)
	DistinctProjects(ctx context.Context) ([]string, error)
	DistinctTags(ctx context.Context) ([]string, error)
}

// GroupBy selects the report dimension.
type GroupBy int

const (
	ByProject GroupBy = iota
	ByTag
)

func (g GroupBy) String() string {
	if g == ByTag {
		return "tag"
	}
	return "project"
}

// ParseGroupBy maps "project" or "tag" onto a GroupBy.
func ParseGroupBy(s string) (GroupBy, error) {
	switch s {
	case "", "project":
		return ByProject, nil
	case "tag":
		return ByTag, nil
	}
	return ByProject, fmt.Errorf("unknown grouping %q", s)
}

// Total is the summed duration of one group.
type Total struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"-"`
	Seconds  int64         `json:"duration_seconds"`
}

// Summary is the result of Report. Total is the tracked time of the frames
// in range; with ByTag the group durations may add up to more than that.
type Summary struct {
	GroupBy GroupBy       `json:"-"`
	Groups  []Total       `json:"groups"`
	Total   time.Duration `json:"-"`
	Seconds int64         `json:"total_seconds"`
	Empty   bool          `json:"empty"`
}

// Engine runs queries against a Reader using an injected clock and zone.
type Engine struct {
	frames Reader
	now    func() time.Time
	loc    *time.Location
}

// New creates an Engine. A nil now defaults to time.Now and a nil loc to
// time.Local.
func New(frames Reader, now func() time.Time, loc *time.Location) *Engine {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{frames: frames, now: now, loc: loc}
}

// Now returns the engine clock truncated to storage resolution.
func (e *Engine) Now() time.Time {
	return e.now().Truncate(time.Second)
}

// Location returns the zone used for calendar days.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Log returns the frames starting inside req's window, newest first.
func (e *Engine) Log(ctx context.Context, req daterange.Request) ([]models.Frame, error) {
	return e.frames.Scan(ctx, store.ScanOptions{
		Range: daterange.Resolve(req, e.Now(), e.loc),
		Order: store.OrderStartDesc,
	})
}

// Chronological returns the frames starting inside req's window, oldest
// first.
func (e *Engine) Chronological(ctx context.Context, req daterange.Request) ([]models.Frame, error) {
	return e.frames.Scan(ctx, store.ScanOptions{
		Range: daterange.Resolve(req, e.Now(), e.loc),
		Order: store.OrderStartAsc,
	})
}

// Report sums frame durations per project or per tag. Groups are ordered
// by duration descending, then by name.
func (e *Engine) Report(ctx context.Context, req daterange.Request, by GroupBy) (*Summary, error) {
	now := e.Now()
	frames, err := e.frames.Scan(ctx, store.ScanOptions{Range: daterange.Resolve(req, now, e.loc)})
	if err != nil {
		return nil, err
	}
	return Summarize(frames, by, now), nil
}

// Summarize groups frames without touching storage.
func Summarize(frames []models.Frame, by GroupBy, now time.Time) *Summary {
	sums := make(map[string]time.Duration)
	var total time.Duration
	for i := range frames {
		d := frames[i].Duration(now)
		total += d
		for _, key := range groupKeys(&frames[i], by) {
			sums[key] += d
		}
	}

	groups := make([]Total, 0, len(sums))
	for name, d := range sums {
		groups = append(groups, Total{Name: name, Duration: d, Seconds: int64(d / time.Second)})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Duration != groups[j].Duration {
			return groups[i].Duration > groups[j].Duration
		}
		return groups[i].Name < groups[j].Name
	})

	return &Summary{
		GroupBy: by,
		Groups:  groups,
		Total:   total,
		Seconds: int64(total / time.Second),
		Empty:   len(frames) == 0,
	}
}

func groupKeys(f *models.Frame, by GroupBy) []string {
	if by == ByProject {
		return []string{f.Project}
	}
	if len(f.Tags) == 0 {
		return []string{Untagged}
	}
	return f.Tags
}

// Projects lists every project ever tracked.
func (e *Engine) Projects(ctx context.Context) ([]string, error) {
	return e.frames.DistinctProjects(ctx)
}

// Tags lists every tag ever used.
func (e *Engine) Tags(ctx context.Context) ([]string, error) {
	return e.frames.DistinctTags(ctx)
}
