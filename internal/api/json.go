package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/timer/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognised
// is logged and reported as an internal error.
func writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrFrameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrAlreadyTracking),
		errors.Is(err, apperr.ErrNotTracking),
		errors.Is(err, apperr.ErrNoPreviousFrame):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidInput),
		errors.Is(err, apperr.ErrInvalidTimeFormat),
		errors.Is(err, apperr.ErrInvalidDateFormat):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
		if status == http.StatusInternalServerError {
			writeJSON(w, status, errorBody("internal error"))
			return
		}
	}
	writeJSON(w, status, errorBody(err.Error()))
}
