package tracker

import (
	"context"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/timer/internal/apperr"
	"github.com/starford/timer/internal/daterange"
	"github.com/starford/timer/internal/models"
	"github.com/starford/timer/internal/store"
)

// EditRequest lists the fields to change on a frame. Nil fields are left
// alone. Start and End accept "HH:MM" or "YYYY-MM-DD HH:MM"; an empty Tags
// slice clears the tags.
type EditRequest struct {
	ID      int64
	Project *string
	Tags    *[]string
	Start   *string
	End     *string
}

// Edit applies req to an existing frame and returns the result. Fields are
// updated independently, so an end before the start is accepted. A missing
// frame is reported before any field is validated.
func (s *Service) Edit(ctx context.Context, req EditRequest) (*models.Frame, error) {
	var edited *models.Frame
	err := s.store.WithTx(ctx, func(q store.Frames) error {
		if _, err := q.Get(ctx, req.ID); err != nil {
			return err
		}
		start, end, err := s.checkEdit(req)
		if err != nil {
			return err
		}
		updates := []struct {
			field store.Field
			value any
			set   bool
		}{
			{store.FieldProject, deref(req.Project), req.Project != nil},
			{store.FieldTags, derefTags(req.Tags), req.Tags != nil},
			{store.FieldStart, start, start != nil},
			{store.FieldEnd, end, end != nil},
		}
		for _, u := range updates {
			if !u.set {
				continue
			}
			if _, err := q.UpdateField(ctx, req.ID, u.field, u.value); err != nil {
				return err
			}
		}
		edited, err = q.Get(ctx, req.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("frame edited", slog.Int64("id", req.ID))
	return edited, nil
}

// checkEdit validates the name fields of req and parses its times.
func (s *Service) checkEdit(req EditRequest) (start, end *time.Time, err error) {
	errs := validation.Errors{}
	if req.Project != nil {
		errs["project"] = validation.Validate(*req.Project, validation.Required)
	}
	if req.Tags != nil {
		errs["tags"] = validation.Validate(*req.Tags, validation.Each(validation.Required))
	}
	if err := invalid(errs.Filter()); err != nil {
		return nil, nil, err
	}
	now := s.Now()
	if start, err = s.parseTime(req.Start, now); err != nil {
		return nil, nil, err
	}
	if end, err = s.parseTime(req.End, now); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// Delete removes a frame by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.FrameNotFound(id)
	}
	s.log.Info("frame deleted", slog.Int64("id", id))
	return nil
}

func (s *Service) parseTime(v *string, now time.Time) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := daterange.ParseDateTime(*v, now, s.loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTags(t *[]string) []string {
	if t == nil {
		return nil
	}
	return *t
}
