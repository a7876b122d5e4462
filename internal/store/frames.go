package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/starford/timer/internal/apperr"
	"github.com/starford/timer/internal/models"
)

// execer is the subset shared by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries implements Frames on top of either the connection pool or a
// single transaction.
type Queries struct {
	q execer
}

const frameColumns = `id, project, start_time, end_time, tags`

// Insert adds an open frame and returns its id.
func (s *Queries) Insert(ctx context.Context, project string, start time.Time, tags []string) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO frames (project, start_time, tags) VALUES (?, ?, ?)`,
		project, start.Unix(), models.JoinTags(tags))
	if err != nil {
		return 0, fmt.Errorf("store: insert frame: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert frame id: %w", err)
	}
	return id, nil
}

// UpdateField sets a single column of frame id and returns the number of
// rows changed. Times are stored as unix seconds; tags are comma-joined.
func (s *Queries) UpdateField(ctx context.Context, id int64, field Field, value any) (int64, error) {
	arg, err := columnValue(field, value)
	if err != nil {
		return 0, err
	}
	// field is one of the whitelisted constants, never user text.
	res, err := s.q.ExecContext(ctx,
		fmt.Sprintf(`UPDATE frames SET %s = ? WHERE id = ?`, field), arg, id)
	if err != nil {
		return 0, fmt.Errorf("store: update %s: %w", field, classify(err))
	}
	return res.RowsAffected()
}

func columnValue(field Field, value any) (any, error) {
	switch field {
	case FieldProject:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case FieldTags:
		if v, ok := value.([]string); ok {
			return models.JoinTags(v), nil
		}
	case FieldStart, FieldEnd:
		switch v := value.(type) {
		case time.Time:
			return v.Unix(), nil
		case *time.Time:
			if v == nil {
				return nil, nil
			}
			return v.Unix(), nil
		}
	default:
		return nil, fmt.Errorf("store: unknown field %q: %w", field, apperr.ErrInvalidInput)
	}
	return nil, fmt.Errorf("store: bad value %T for %s: %w", value, field, apperr.ErrInvalidInput)
}

// Delete removes frame id and returns the number of rows removed.
func (s *Queries) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM frames WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("store: delete frame: %w", classify(err))
	}
	return res.RowsAffected()
}

// Get returns frame id or an apperr.FrameNotFoundError.
func (s *Queries) Get(ctx context.Context, id int64) (*models.Frame, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+frameColumns+` FROM frames WHERE id = ?`, id)
	f, err := scanFrame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.FrameNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get frame: %w", classify(err))
	}
	return f, nil
}

// GetOpen returns the frame without an end time, or nil when idle.
func (s *Queries) GetOpen(ctx context.Context) (*models.Frame, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+frameColumns+` FROM frames WHERE end_time IS NULL ORDER BY start_time DESC LIMIT 1`)
	return optionalFrame(scanFrame(row))
}

// LastClosed returns the most recently ended frame, or nil if none exists.
func (s *Queries) LastClosed(ctx context.Context) (*models.Frame, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+frameColumns+` FROM frames WHERE end_time IS NOT NULL ORDER BY end_time DESC, id DESC LIMIT 1`)
	return optionalFrame(scanFrame(row))
}

func optionalFrame(f *models.Frame, err error) (*models.Frame, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: query frame: %w", classify(err))
	}
	return f, nil
}

// Scan returns frames whose start_time falls inside opts.Range.
func (s *Queries) Scan(ctx context.Context, opts ScanOptions) ([]models.Frame, error) {
	query := `SELECT ` + frameColumns + ` FROM frames`
	var args []any
	if opts.Range != nil {
		query += ` WHERE start_time >= ? AND start_time <= ?`
		args = append(args, opts.Range.From.Unix(), opts.Range.To.Unix())
	}
	switch opts.Order {
	case OrderStartAsc:
		query += ` ORDER BY start_time ASC, id ASC`
	case OrderStartDesc:
		query += ` ORDER BY start_time DESC, id DESC`
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: scan frames: %w", classify(err))
	}
	defer rows.Close()

	out := []models.Frame{}
	for rows.Next() {
		f, err := scanFrame(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan frame: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// DistinctProjects returns every project name, sorted.
func (s *Queries) DistinctProjects(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT DISTINCT project FROM frames ORDER BY project`)
	if err != nil {
		return nil, fmt.Errorf("store: distinct projects: %w", classify(err))
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DistinctTags returns every individual tag, de-duplicated and sorted.
func (s *Queries) DistinctTags(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT DISTINCT tags FROM frames WHERE tags IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("store: distinct tags: %w", classify(err))
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return nil, err
		}
		for _, t := range models.SplitTags(&joined) {
			seen[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFrame(r rowScanner) (*models.Frame, error) {
	var (
		f     models.Frame
		start int64
		end   sql.NullInt64
		tags  sql.NullString
	)
	if err := r.Scan(&f.ID, &f.Project, &start, &end, &tags); err != nil {
		return nil, err
	}
	f.Start = time.Unix(start, 0)
	if end.Valid {
		t := time.Unix(end.Int64, 0)
		f.End = &t
	}
	if tags.Valid {
		f.Tags = models.SplitTags(&tags.String)
	} else {
		f.Tags = []string{}
	}
	return &f, nil
}
