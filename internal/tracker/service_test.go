package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starford/timer/internal/apperr"
	"github.com/starford/timer/internal/models"
	"github.com/starford/timer/internal/store"
	"github.com/starford/timer/internal/testutil"
)

var t0 = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *store.DB, *testutil.Clock) {
	t.Helper()
	db := testutil.TestDB(t)
	clock := testutil.NewClock(t0)
	return NewService(db, clock.Now, time.UTC, nil), db, clock
}

func allFrames(t *testing.T, db store.Frames) []models.Frame {
	t.Helper()
	frames, err := db.Scan(context.Background(), store.ScanOptions{Order: store.OrderStartAsc})
	require.NoError(t, err)
	return frames
}

func openCount(t *testing.T, db store.Frames) int {
	t.Helper()
	n := 0
	for _, f := range allFrames(t, db) {
		if f.IsOpen() {
			n++
		}
	}
	return n
}

func TestStartStop(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	started, err := svc.Start(ctx, "timer", []string{"cli"})
	require.NoError(t, err)
	require.Equal(t, "timer", started.Project)
	require.True(t, started.Start.Equal(t0))
	require.True(t, started.IsOpen())

	clock.Advance(90 * time.Second)
	stopped, err := svc.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, started.ID, stopped.ID)
	require.Equal(t, 90*time.Second, stopped.Duration(time.Time{}))
	require.Equal(t, "1m 30s", models.FormatDuration(stopped.Duration(clock.Now())))

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	require.Nil(t, status)
}

func TestAtMostOneOpenFrame(t *testing.T) {
	svc, db, clock := newService(t)
	ctx := context.Background()

	ops := []func() error{
		func() error { _, err := svc.Start(ctx, "a", nil); return err },
		func() error { _, err := svc.Start(ctx, "b", nil); return err },
		func() error { _, err := svc.Stop(ctx); return err },
		func() error { _, err := svc.Stop(ctx); return err },
		func() error { _, err := svc.Start(ctx, "c", nil); return err },
		func() error { _, err := svc.Restart(ctx); return err },
		func() error { _, err := svc.Switch(ctx, "repo", "main"); return err },
		func() error { _, err := svc.Cancel(ctx); return err },
		func() error { _, err := svc.Restart(ctx); return err },
	}
	for _, op := range ops {
		_ = op()
		clock.Advance(time.Minute)
		require.LessOrEqual(t, openCount(t, db), 1)
	}
}

func TestStartWhileTracking(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "a", nil)
	require.NoError(t, err)
	before := allFrames(t, db)

	_, err = svc.Start(ctx, "b", []string{"x"})
	require.ErrorIs(t, err, apperr.ErrAlreadyTracking)
	require.Equal(t, before, allFrames(t, db))
}

func TestStopAndCancelWhileIdle(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "a", nil)
	require.NoError(t, err)
	_, err = svc.Stop(ctx)
	require.NoError(t, err)
	before := allFrames(t, db)

	_, err = svc.Stop(ctx)
	require.ErrorIs(t, err, apperr.ErrNotTracking)
	_, err = svc.Cancel(ctx)
	require.ErrorIs(t, err, apperr.ErrNotTracking)
	require.Equal(t, before, allFrames(t, db))
}

func TestCancelRemovesFrame(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	started, err := svc.Start(ctx, "a", []string{"x"})
	require.NoError(t, err)
	cancelled, err := svc.Cancel(ctx)
	require.NoError(t, err)
	require.Equal(t, started.ID, cancelled.ID)
	require.Equal(t, []string{"x"}, cancelled.Tags)
	require.Empty(t, allFrames(t, db))
}

func TestRestart(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	_, err := svc.Restart(ctx)
	require.ErrorIs(t, err, apperr.ErrNoPreviousFrame)

	_, err = svc.Start(ctx, "a", []string{"one", "two"})
	require.NoError(t, err)
	clock.Advance(time.Hour)

	_, err = svc.Restart(ctx)
	require.ErrorIs(t, err, apperr.ErrAlreadyTracking)

	_, err = svc.Stop(ctx)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	restarted, err := svc.Restart(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", restarted.Project)
	require.Equal(t, []string{"one", "two"}, restarted.Tags)
	require.True(t, restarted.Start.Equal(t0.Add(2*time.Hour)))
}

func TestSwitchIsIdempotent(t *testing.T) {
	svc, db, clock := newService(t)
	ctx := context.Background()

	res, err := svc.Switch(ctx, "timer", "main")
	require.NoError(t, err)
	require.True(t, res.Changed())
	require.Nil(t, res.Stopped)

	clock.Advance(time.Minute)
	res, err = svc.Switch(ctx, "timer", "main")
	require.NoError(t, err)
	require.False(t, res.Changed())
	require.Nil(t, res.Stopped)
	require.Equal(t, "timer", res.Current.Project)

	frames := allFrames(t, db)
	require.Len(t, frames, 1)
	require.True(t, frames[0].IsOpen())
}

func TestSwitchClosesPrevious(t *testing.T) {
	svc, db, clock := newService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "timer", []string{"main", "extra"})
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	res, err := svc.Switch(ctx, "timer", "feature")
	require.NoError(t, err)
	require.NotNil(t, res.Stopped)
	require.Equal(t, 10*time.Minute, res.Stopped.Duration(time.Time{}))
	require.Equal(t, []string{"feature"}, res.Started.Tags)

	frames := allFrames(t, db)
	require.Len(t, frames, 2)
	require.False(t, frames[0].IsOpen())
	require.True(t, frames[1].IsOpen())
}

type failingStore struct {
	*store.DB
}

func (f failingStore) WithTx(ctx context.Context, fn func(store.Frames) error) error {
	return f.DB.WithTx(ctx, func(q store.Frames) error {
		return fn(insertFails{q})
	})
}

type insertFails struct {
	store.Frames
}

func (insertFails) Insert(context.Context, string, time.Time, []string) (int64, error) {
	return 0, errors.New("disk I/O error")
}

func TestSwitchFailureRollsBack(t *testing.T) {
	svc, db, clock := newService(t)
	ctx := context.Background()
	broken := NewService(failingStore{db}, clock.Now, time.UTC, nil)

	// Idle before: still idle after.
	_, err := broken.Switch(ctx, "timer", "main")
	require.Error(t, err)
	require.Empty(t, allFrames(t, db))

	// Tracking before: the same frame stays open.
	started, err := svc.Start(ctx, "other", nil)
	require.NoError(t, err)
	clock.Advance(time.Minute)

	_, err = broken.Switch(ctx, "timer", "main")
	require.Error(t, err)
	open, err := svc.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	require.Equal(t, started.ID, open.ID)
	require.Equal(t, 1, openCount(t, db))
}

type fakeSCM struct {
	repo, branch string
	ok           bool
}

func (f fakeSCM) Context(context.Context) (string, string, bool) {
	return f.repo, f.branch, f.ok
}

func TestSync(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	res, err := svc.Sync(ctx, fakeSCM{})
	require.NoError(t, err)
	require.Nil(t, res)
	require.Empty(t, allFrames(t, db))

	res, err = svc.Sync(ctx, fakeSCM{repo: "timer", branch: "main", ok: true})
	require.NoError(t, err)
	require.True(t, res.Changed())
	require.Equal(t, "timer", res.Started.Project)
}

func TestStartValidation(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "", nil)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.Start(ctx, "a", []string{"ok", ""})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.Switch(ctx, "timer", "")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	require.Empty(t, allFrames(t, db))
}
