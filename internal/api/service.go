package api

import (
	"context"
	"time"

	"github.com/starford/timer/internal/daterange"
	"github.com/starford/timer/internal/models"
	"github.com/starford/timer/internal/report"
	"github.com/starford/timer/internal/tracker"
)

// Tracker is the lifecycle surface the API drives. *tracker.Service
// satisfies it.
type Tracker interface {
	Status(ctx context.Context) (*models.Frame, error)
	Start(ctx context.Context, project string, tags []string) (*models.Frame, error)
	Stop(ctx context.Context) (*models.Frame, error)
	Cancel(ctx context.Context) (*models.Frame, error)
	Restart(ctx context.Context) (*models.Frame, error)
	Edit(ctx context.Context, req tracker.EditRequest) (*models.Frame, error)
	Delete(ctx context.Context, id int64) error
}

// Reports is the read-only query surface. *report.Engine satisfies it.
type Reports interface {
	Now() time.Time
	Location() *time.Location
	Log(ctx context.Context, req daterange.Request) ([]models.Frame, error)
	Chronological(ctx context.Context, req daterange.Request) ([]models.Frame, error)
	Report(ctx context.Context, req daterange.Request, by report.GroupBy) (*report.Summary, error)
	Projects(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
}

var (
	_ Tracker = (*tracker.Service)(nil)
	_ Reports = (*report.Engine)(nil)
)
