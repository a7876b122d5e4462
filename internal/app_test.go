package internal

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noRepo struct{}

func (noRepo) Context(context.Context) (string, string, bool) { return "", "", false }

func (noRepo) GitDir(context.Context) (string, error) {
	return "", errors.New("fatal: not a git repository")
}

func openTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "frames.db")
	base := []Option{
		WithConfig(cfg),
		WithOutput(&bytes.Buffer{}),
		WithErrOutput(&bytes.Buffer{}),
		WithLocation(time.UTC),
		WithSourceControl(noRepo{}),
	}
	app, err := Open(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestOpen_RequiresConfig(t *testing.T) {
	_, err := Open()
	require.Error(t, err, "expected error without config")
}

func TestOpen_WiresServices(t *testing.T) {
	fixed := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	app := openTestApp(t, WithClock(func() time.Time { return fixed }))

	f, err := app.Tracker.Start(context.Background(), "timer", nil)
	require.NoError(t, err)
	assert.True(t, f.Start.Equal(fixed), "start = %v, want %v", f.Start, fixed)
	assert.Equal(t, time.UTC, app.Reports.Location())
}

func TestRouter_Health(t *testing.T) {
	app := openTestApp(t)
	h := app.Router()

	for _, path := range []string{"/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRouter_TokenAuth(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "frames.db")
	cfg.Auth = AuthConfig{Mode: AuthModeToken, Token: "s3cret"}
	app := openTestApp(t, WithConfig(cfg))
	h := app.Router()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "no token")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health should not need a token")
}

func TestWatchBranches_OutsideRepository(t *testing.T) {
	app := openTestApp(t)
	err := app.WatchBranches(context.Background(), nil)
	require.Error(t, err, "expected error outside a repository")
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "frames.db")
	cfg.App.HTTP.Port = freePort(t)
	app := openTestApp(t, WithConfig(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "serve did not stop")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	return srv.Listener.Addr().(*net.TCPAddr).Port
}
