package internal

import (
	"io"
	"log/slog"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
	scm    SourceControl
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets where command results are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithErrOutput sets where diagnostics and logs are written. Defaults to
// stderr.
func WithErrOutput(w io.Writer) Option {
	return func(a *application) {
		a.errOut = w
	}
}

// WithLogger replaces the text logger built from the configured level.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithClock sets the time source used for every "now".
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}

// WithLocation sets the zone used to resolve calendar days and wall times.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(a *application) {
		a.loc = loc
	}
}

// WithSourceControl replaces the git CLI collaborator used by switch.
func WithSourceControl(sc SourceControl) Option {
	return func(a *application) {
		a.scm = sc
	}
}
