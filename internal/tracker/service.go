// Package tracker owns the frame lifecycle: it keeps at most one frame open
// and performs every multi-step change inside a single store transaction.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/timer/internal/apperr"
	"github.com/starford/timer/internal/models"
	"github.com/starford/timer/internal/store"
)

// SourceControl reports the repository name and branch of the working
// directory. ok is false outside a repository or when the tooling fails.
type SourceControl interface {
	Context(ctx context.Context) (repo, branch string, ok bool)
}

// Service coordinates lifecycle and edit operations over a store.
type Service struct {
	store store.Store
	now   func() time.Time
	loc   *time.Location
	log   *slog.Logger
}

// NewService creates a tracker. Nil arguments fall back to time.Now,
// time.Local and slog.Default.
func NewService(st store.Store, now func() time.Time, loc *time.Location, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, now: now, loc: loc, log: logger}
}

// Now returns the service clock truncated to storage resolution.
func (s *Service) Now() time.Time {
	return s.now().Truncate(time.Second)
}

// Status returns the open frame, or nil when idle.
func (s *Service) Status(ctx context.Context) (*models.Frame, error) {
	return s.store.GetOpen(ctx)
}

// Start opens a new frame.
func (s *Service) Start(ctx context.Context, project string, tags []string) (*models.Frame, error) {
	if err := validateFrame(project, tags); err != nil {
		return nil, err
	}
	var started *models.Frame
	err := s.store.WithTx(ctx, func(q store.Frames) error {
		open, err := q.GetOpen(ctx)
		if err != nil {
			return err
		}
		if open != nil {
			return apperr.ErrAlreadyTracking
		}
		started, err = s.open(ctx, q, project, tags)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("frame started", slog.Int64("id", started.ID), slog.String("project", project))
	return started, nil
}

// Stop closes the open frame at the current instant and returns it.
func (s *Service) Stop(ctx context.Context) (*models.Frame, error) {
	var stopped *models.Frame
	err := s.store.WithTx(ctx, func(q store.Frames) error {
		open, err := q.GetOpen(ctx)
		if err != nil {
			return err
		}
		if open == nil {
			return apperr.ErrNotTracking
		}
		stopped, err = s.close(ctx, q, open)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("frame stopped", slog.Int64("id", stopped.ID), slog.String("project", stopped.Project))
	return stopped, nil
}

// Cancel deletes the open frame and returns it as it was.
func (s *Service) Cancel(ctx context.Context) (*models.Frame, error) {
	var cancelled *models.Frame
	err := s.store.WithTx(ctx, func(q store.Frames) error {
		open, err := q.GetOpen(ctx)
		if err != nil {
			return err
		}
		if open == nil {
			return apperr.ErrNotTracking
		}
		if _, err := q.Delete(ctx, open.ID); err != nil {
			return err
		}
		cancelled = open
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("frame cancelled", slog.Int64("id", cancelled.ID))
	return cancelled, nil
}

// Restart opens a new frame with the project and tags of the most recently
// closed one.
func (s *Service) Restart(ctx context.Context) (*models.Frame, error) {
	var started *models.Frame
	err := s.store.WithTx(ctx, func(q store.Frames) error {
		open, err := q.GetOpen(ctx)
		if err != nil {
			return err
		}
		if open != nil {
			return apperr.ErrAlreadyTracking
		}
		last, err := q.LastClosed(ctx)
		if err != nil {
			return err
		}
		if last == nil {
			return apperr.ErrNoPreviousFrame
		}
		started, err = s.open(ctx, q, last.Project, last.Tags)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("frame restarted", slog.Int64("id", started.ID), slog.String("project", started.Project))
	return started, nil
}

// SwitchResult describes what Switch did. Stopped and Started are nil when
// the open frame already matched.
type SwitchResult struct {
	Stopped *models.Frame
	Started *models.Frame
	Current *models.Frame
}

// Changed reports whether a new frame was opened.
func (r *SwitchResult) Changed() bool {
	return r != nil && r.Started != nil
}

// Switch makes (repo, [branch]) the tracked context. When the open frame
// already has that project and first tag nothing changes; otherwise the open
// frame (if any) is closed and the new one opened in the same transaction.
func (s *Service) Switch(ctx context.Context, repo, branch string) (*SwitchResult, error) {
	if err := validateFrame(repo, []string{branch}); err != nil {
		return nil, err
	}
	res := &SwitchResult{}
	err := s.store.WithTx(ctx, func(q store.Frames) error {
		open, err := q.GetOpen(ctx)
		if err != nil {
			return err
		}
		if open != nil && open.Project == repo && open.FirstTag() == branch {
			res.Current = open
			return nil
		}
		if open != nil {
			if res.Stopped, err = s.close(ctx, q, open); err != nil {
				return err
			}
		}
		res.Started, err = s.open(ctx, q, repo, []string{branch})
		res.Current = res.Started
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Changed() {
		s.log.Info("context switched", slog.String("project", repo), slog.String("branch", branch))
	}
	return res, nil
}

// Sync asks sc for the current repository context and switches to it.
// Outside a repository it returns (nil, nil).
func (s *Service) Sync(ctx context.Context, sc SourceControl) (*SwitchResult, error) {
	repo, branch, ok := sc.Context(ctx)
	if !ok {
		s.log.Debug("no source control context")
		return nil, nil
	}
	return s.Switch(ctx, repo, branch)
}

func (s *Service) open(ctx context.Context, q store.Frames, project string, tags []string) (*models.Frame, error) {
	start := s.Now()
	id, err := q.Insert(ctx, project, start, tags)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return &models.Frame{ID: id, Project: project, Start: start, Tags: tags}, nil
}

func (s *Service) close(ctx context.Context, q store.Frames, f *models.Frame) (*models.Frame, error) {
	end := s.Now()
	if _, err := q.UpdateField(ctx, f.ID, store.FieldEnd, end); err != nil {
		return nil, err
	}
	closed := *f
	closed.End = &end
	return &closed, nil
}

func validateFrame(project string, tags []string) error {
	return invalid(validation.Errors{
		"project": validation.Validate(project, validation.Required),
		"tags":    validation.Validate(tags, validation.Each(validation.Required)),
	}.Filter())
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
}
