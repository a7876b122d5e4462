// Package gitwatch notices branch checkouts by watching a repository's HEAD
// file.
package gitwatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events a single checkout produces.
const DefaultDebounce = 200 * time.Millisecond

// ChangeFunc is called once per settled burst of HEAD changes.
type ChangeFunc func(ctx context.Context) error

// Watch observes gitDir until ctx is cancelled and calls onChange after
// HEAD has been rewritten and no further HEAD events arrived for debounce.
// Errors from onChange are logged, not returned.
func Watch(ctx context.Context, gitDir string, debounce time.Duration, logger *slog.Logger, onChange ChangeFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// git replaces HEAD by renaming HEAD.lock, so watch the directory.
	if err := w.Add(gitDir); err != nil {
		return err
	}
	logger.Info("gitwatch: started", slog.String("dir", gitDir))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("gitwatch: stopped")
			return nil

		case <-fire:
			if err := onChange(ctx); err != nil {
				logger.Warn("gitwatch: sync failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != "HEAD" {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("gitwatch: HEAD changed", slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("gitwatch: error", slog.String("error", watchErr.Error()))
		}
	}
}
