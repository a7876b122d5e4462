package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/starford/timer/internal/git"
	"github.com/starford/timer/internal/gitwatch"
	"github.com/starford/timer/internal/report"
	"github.com/starford/timer/internal/store"
	"github.com/starford/timer/internal/tracker"
)

// SourceControl is the repository collaborator: the tracked context for
// switch, and the directory to watch for checkouts.
type SourceControl interface {
	tracker.SourceControl
	GitDir(ctx context.Context) (string, error)
}

var _ SourceControl = (*git.Repository)(nil)

// App is one opened frame database with the services built over it.
type App struct {
	Config  *Config
	Store   *store.DB
	Tracker *tracker.Service
	Reports *report.Engine
	Source  SourceControl
	Logger  *slog.Logger
	Out     io.Writer
	ErrOut  io.Writer
}

// Open applies opts, opens the database and wires the services. The caller
// must Close the returned App.
func Open(opts ...Option) (*App, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	if app.out == nil {
		app.out = os.Stdout
	}
	if app.errOut == nil {
		app.errOut = os.Stderr
	}
	if app.now == nil {
		app.now = time.Now
	}
	if app.loc == nil {
		app.loc = time.Local
	}

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(app.errOut, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	if err := cfg.ResolveDBPath(); err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded",
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	scm := app.scm
	if scm == nil {
		scm = git.NewRepository("", logger)
	}

	return &App{
		Config:  cfg,
		Store:   db,
		Tracker: tracker.NewService(db, app.now, app.loc, logger),
		Reports: report.New(db, app.now, app.loc),
		Source:  scm,
		Logger:  logger,
		Out:     app.out,
		ErrOut:  app.errOut,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}

// WatchBranches syncs tracking with the current repository every time
// HEAD changes, until ctx is cancelled. onSwitch is called after each sync
// that opened a new frame.
func (a *App) WatchBranches(ctx context.Context, onSwitch func(*tracker.SwitchResult)) error {
	dir, err := a.Source.GitDir(ctx)
	if err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}
	return gitwatch.Watch(ctx, dir, a.Config.Watch.Debounce, a.Logger, func(ctx context.Context) error {
		res, err := a.Tracker.Sync(ctx, a.Source)
		if err != nil {
			return err
		}
		if res.Changed() && onSwitch != nil {
			onSwitch(res)
		}
		return nil
	})
}
