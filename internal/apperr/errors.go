// Package apperr holds the error taxonomy shared by the tracker, the query
// engine and every outer surface (CLI, HTTP, MCP).
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyTracking    = errors.New("already tracking - stop first")
	ErrNotTracking        = errors.New("not tracking")
	ErrFrameNotFound      = errors.New("frame not found")
	ErrNoPreviousFrame    = errors.New("no previous frame to restart")
	ErrInvalidTimeFormat  = errors.New("invalid time format")
	ErrInvalidDateFormat  = errors.New("invalid date format")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// FrameNotFoundError reports the id that was looked up. It matches
// ErrFrameNotFound with errors.Is.
type FrameNotFoundError struct {
	ID int64
}

func (e *FrameNotFoundError) Error() string {
	return fmt.Sprintf("frame %d not found", e.ID)
}

func (e *FrameNotFoundError) Is(target error) bool {
	return target == ErrFrameNotFound
}

// FrameNotFound builds a FrameNotFoundError for id.
func FrameNotFound(id int64) error {
	return &FrameNotFoundError{ID: id}
}
