package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starford/timer/internal/daterange"
	"github.com/starford/timer/internal/models"
	"github.com/starford/timer/internal/store"
	"github.com/starford/timer/internal/testutil"
)

var day = time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

func closed(t *testing.T, db *store.DB, project string, start time.Time, d time.Duration, tags ...string) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := db.Insert(ctx, project, start, tags)
	require.NoError(t, err)
	_, err = db.UpdateField(ctx, id, store.FieldEnd, start.Add(d))
	require.NoError(t, err)
	return id
}

func newEngine(db *store.DB, now time.Time) *Engine {
	return New(db, func() time.Time { return now }, time.UTC)
}

func TestReportByProject(t *testing.T) {
	db := testutil.TestDB(t)
	closed(t, db, "web", day.Add(9*time.Hour), 30*time.Minute)
	closed(t, db, "api", day.Add(10*time.Hour), time.Hour)
	closed(t, db, "web", day.Add(12*time.Hour), 45*time.Minute)

	e := newEngine(db, day.Add(20*time.Hour))
	sum, err := e.Report(context.Background(), daterange.Request{}, ByProject)
	require.NoError(t, err)
	require.False(t, sum.Empty)
	require.Equal(t, []Total{
		{Name: "web", Duration: 75 * time.Minute, Seconds: 4500},
		{Name: "api", Duration: time.Hour, Seconds: 3600},
	}, sum.Groups)
	require.Equal(t, 135*time.Minute, sum.Total)
}

func TestReportByTagCountsEveryTag(t *testing.T) {
	db := testutil.TestDB(t)
	closed(t, db, "web", day.Add(9*time.Hour), 10*time.Minute, "a", "b")
	closed(t, db, "web", day.Add(10*time.Hour), 5*time.Minute)

	e := newEngine(db, day.Add(20*time.Hour))
	sum, err := e.Report(context.Background(), daterange.Request{}, ByTag)
	require.NoError(t, err)
	require.Equal(t, []Total{
		{Name: "a", Duration: 10 * time.Minute, Seconds: 600},
		{Name: "b", Duration: 10 * time.Minute, Seconds: 600},
		{Name: Untagged, Duration: 5 * time.Minute, Seconds: 300},
	}, sum.Groups)
	require.Equal(t, 15*time.Minute, sum.Total)
}

func TestReportTieBreakIsAlphabetical(t *testing.T) {
	frames := []models.Frame{
		frame("zeta", day, time.Hour),
		frame("alpha", day.Add(2*time.Hour), time.Hour),
		frame("mid", day.Add(4*time.Hour), 2*time.Hour),
	}
	sum := Summarize(frames, ByProject, day.Add(24*time.Hour))
	require.Equal(t, "mid", sum.Groups[0].Name)
	require.Equal(t, "alpha", sum.Groups[1].Name)
	require.Equal(t, "zeta", sum.Groups[2].Name)
}

func TestReportOpenFrameUsesNow(t *testing.T) {
	db := testutil.TestDB(t)
	_, err := db.Insert(context.Background(), "web", day.Add(9*time.Hour), nil)
	require.NoError(t, err)

	e := newEngine(db, day.Add(9*time.Hour+90*time.Second))
	sum, err := e.Report(context.Background(), daterange.Request{}, ByProject)
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, sum.Total)
}

func TestReportInvertedRangeIsEmpty(t *testing.T) {
	db := testutil.TestDB(t)
	closed(t, db, "web", time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC), time.Hour)

	from := daterange.Date{Year: 2025, Month: time.January, Day: 10}
	to := daterange.Date{Year: 2025, Month: time.January, Day: 5}
	e := newEngine(db, day)

	sum, err := e.Report(context.Background(), daterange.Request{From: &from, To: &to}, ByProject)
	require.NoError(t, err)
	require.True(t, sum.Empty)
	require.Empty(t, sum.Groups)

	frames, err := e.Log(context.Background(), daterange.Request{From: &from, To: &to})
	require.NoError(t, err)
	require.Empty(t, frames)

	// Same dates in order do include the frame.
	frames, err = e.Log(context.Background(), daterange.Request{From: &to, To: &from})
	require.NoError(t, err)
	require.Len(t, frames, 1)
}

func TestLogOrderAndWindow(t *testing.T) {
	db := testutil.TestDB(t)
	first := closed(t, db, "a", day.Add(8*time.Hour), time.Hour)
	second := closed(t, db, "b", day.Add(11*time.Hour), time.Hour)
	closed(t, db, "c", day.Add(-2*time.Hour), time.Hour)

	e := newEngine(db, day.Add(20*time.Hour))
	frames, err := e.Log(context.Background(), daterange.Request{})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, second, frames[0].ID)
	require.Equal(t, first, frames[1].ID)

	all, err := e.Log(context.Background(), daterange.Request{All: true})
	require.NoError(t, err)
	require.Len(t, all, 3)

	chrono, err := e.Chronological(context.Background(), daterange.Request{All: true})
	require.NoError(t, err)
	require.Equal(t, "c", chrono[0].Project)
}

func TestProjectsAndTags(t *testing.T) {
	db := testutil.TestDB(t)
	closed(t, db, "web", day, time.Minute, "ui")
	closed(t, db, "api", day, time.Minute, "ui", "bug")

	e := newEngine(db, day)
	projects, err := e.Projects(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"api", "web"}, projects)

	tags, err := e.Tags(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"bug", "ui"}, tags)
}

func TestParseGroupBy(t *testing.T) {
	g, err := ParseGroupBy("tag")
	require.NoError(t, err)
	require.Equal(t, ByTag, g)

	g, err = ParseGroupBy("")
	require.NoError(t, err)
	require.Equal(t, ByProject, g)

	_, err = ParseGroupBy("client")
	require.Error(t, err)
}

func frame(project string, start time.Time, d time.Duration) models.Frame {
	end := start.Add(d)
	return models.Frame{Project: project, Start: start, End: &end}
}
