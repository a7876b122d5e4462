package store

import (
	"context"
	"time"

	"github.com/starford/timer/internal/models"
)

// Frames defines the point and range operations on the frame table.
// Consumers should depend on this interface rather than the concrete *DB
// type so that a transaction scope can be handed in its place.
type Frames interface {
	Insert(ctx context.Context, project string, start time.Time, tags []string) (int64, error)
	UpdateField(ctx context.Context, id int64, field Field, value any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Get(ctx context.Context, id int64) (*models.Frame, error)
	GetOpen(ctx context.Context) (*models.Frame, error)
	LastClosed(ctx context.Context) (*models.Frame, error)
	Scan(ctx context.Context, opts ScanOptions) ([]models.Frame, error)
	DistinctProjects(ctx context.Context) ([]string, error)
	DistinctTags(ctx context.Context) ([]string, error)
}

// Store is a Frames implementation that can also open transactions.
type Store interface {
	Frames
	WithTx(ctx context.Context, fn func(Frames) error) error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Field names a mutable frame column.
type Field string

const (
	FieldProject Field = "project"
	FieldTags    Field = "tags"
	FieldStart   Field = "start_time"
	FieldEnd     Field = "end_time"
)

// Order controls the start_time ordering of Scan results.
type Order int

const (
	OrderNone Order = iota
	OrderStartAsc
	OrderStartDesc
)

// Range is an inclusive start_time window.
type Range struct {
	From time.Time
	To   time.Time
}

// ScanOptions filters and orders Scan. A nil Range returns every frame.
type ScanOptions struct {
	Range *Range
	Order Order
}
