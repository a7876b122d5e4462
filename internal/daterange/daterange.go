// Package daterange turns calendar dates and wall-clock strings into the
// instants used to query frames.
package daterange

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/starford/timer/internal/apperr"
	"github.com/starford/timer/internal/store"
)

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	dateTimeLayout = "2006-01-02 15:04"
)

// Date is a local calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DateOf returns the calendar day of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", apperr.ErrInvalidDateFormat, s)
	}
	return DateOf(t, time.UTC), nil
}

// Request selects the frames to query. With neither date set the window is
// today; with one date it is that day; with both it runs from the start of
// From to the end of To. All drops the window entirely.
type Request struct {
	From *Date
	To   *Date
	All  bool
}

// Resolve computes the start_time window for req. It returns nil when
// req.All is set. Inverted windows are returned as given.
func Resolve(req Request, now time.Time, loc *time.Location) *store.Range {
	if req.All {
		return nil
	}
	from, to := req.From, req.To
	switch {
	case from == nil && to == nil:
		today := DateOf(now, loc)
		from, to = &today, &today
	case from == nil:
		from = to
	case to == nil:
		to = from
	}
	return &store.Range{
		From: StartOfDay(*from, now, loc),
		To:   EndOfDay(*to, now, loc),
	}
}

// StartOfDay returns the earliest instant at which the wall clock in loc
// reads 00:00:00 on d, or now if that wall time does not exist.
func StartOfDay(d Date, now time.Time, loc *time.Location) time.Time {
	t, ok := Earliest(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC), loc)
	if !ok {
		slog.Warn("local day start does not exist, using now", slog.String("date", d.String()))
		return now
	}
	return t
}

// EndOfDay returns the latest instant at which the wall clock in loc reads
// 23:59:59 on d, or now if that wall time does not exist.
func EndOfDay(d Date, now time.Time, loc *time.Location) time.Time {
	t, ok := Latest(time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, time.UTC), loc)
	if !ok {
		slog.Warn("local day end does not exist, using now", slog.String("date", d.String()))
		return now
	}
	return t
}

// ParseDateTime parses "HH:MM" (today in loc) or "YYYY-MM-DD HH:MM".
// Ambiguous wall times resolve to the earliest instant; wall times skipped
// by a clock change resolve to now.
func ParseDateTime(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var wall time.Time
	if t, err := time.Parse(clockLayout, s); err == nil {
		y, m, d := now.In(loc).Date()
		wall = time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC)
	} else if t, err := time.Parse(dateTimeLayout, s); err == nil {
		wall = t
	} else {
		return time.Time{}, fmt.Errorf("%w: %q (expected HH:MM or YYYY-MM-DD HH:MM)", apperr.ErrInvalidTimeFormat, s)
	}

	t, ok := Earliest(wall, loc)
	if !ok {
		slog.Warn("local time does not exist, using now", slog.String("time", s))
		return now, nil
	}
	return t, nil
}

// Candidates returns every instant whose wall clock in loc equals the
// fields of wall (which is read as a plain UTC wall clock), in ascending
// order. The result has zero elements for a skipped wall time, two for a
// repeated one and one otherwise.
func Candidates(wall time.Time, loc *time.Location) []time.Time {
	wall = wall.In(time.UTC)
	var out []time.Time
	for _, probe := range []time.Time{wall.Add(-12 * time.Hour), wall.Add(12 * time.Hour)} {
		_, offset := probe.In(loc).Zone()
		cand := wall.Add(-time.Duration(offset) * time.Second).In(loc)
		if !sameWallClock(cand, wall) {
			continue
		}
		if len(out) > 0 && out[0].Equal(cand) {
			continue
		}
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Earliest returns the first candidate for wall in loc.
func Earliest(wall time.Time, loc *time.Location) (time.Time, bool) {
	c := Candidates(wall, loc)
	if len(c) == 0 {
		return time.Time{}, false
	}
	return c[0], true
}

// Latest returns the last candidate for wall in loc.
func Latest(wall time.Time, loc *time.Location) (time.Time, bool) {
	c := Candidates(wall, loc)
	if len(c) == 0 {
		return time.Time{}, false
	}
	return c[len(c)-1], true
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}
