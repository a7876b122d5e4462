package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/timer/internal/daterange"
	"github.com/starford/timer/internal/export"
	"github.com/starford/timer/internal/report"
	"github.com/starford/timer/internal/tracker"
)

// Handler holds API route handlers.
type Handler struct {
	tracker Tracker
	reports Reports
}

// NewHandler creates a new Handler.
func NewHandler(t Tracker, r Reports) *Handler {
	return &Handler{tracker: t, reports: r}
}

// rangeRequest reads from, to and all from the query string.
func rangeRequest(r *http.Request) (daterange.Request, error) {
	q := r.URL.Query()
	var req daterange.Request
	for _, p := range []struct {
		key string
		dst **daterange.Date
	}{{"from", &req.From}, {"to", &req.To}} {
		if v := q.Get(p.key); v != "" {
			d, err := daterange.ParseDate(v)
			if err != nil {
				return req, err
			}
			*p.dst = &d
		}
	}
	if v := q.Get("all"); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("invalid all=%q", v)
		}
		req.All = all
	}
	return req, nil
}

func frameID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// Status handles GET /api/status.
//
//	@Summary		Current tracking state
//	@Tags			tracking
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	f, err := h.tracker.Status(r.Context())
	if err != nil {
		writeError(w, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse(f, h.reports.Now(), h.reports.Location()))
}

// Start handles POST /api/start.
//
//	@Summary		Start tracking a project
//	@Tags			tracking
//	@Accept			json
//	@Produce		json
//	@Param			body	body		StartRequest	true	"Project and tags"
//	@Success		201		{object}	FrameResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/start [post]
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	f, err := h.tracker.Start(r.Context(), req.Project, req.Tags)
	if err != nil {
		writeError(w, "start", err)
		return
	}
	writeJSON(w, http.StatusCreated, frameResponse(f, h.reports.Now(), h.reports.Location()))
}

// Stop handles POST /api/stop.
//
//	@Summary		Stop the current frame
//	@Tags			tracking
//	@Produce		json
//	@Success		200	{object}	FrameResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/stop [post]
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	f, err := h.tracker.Stop(r.Context())
	if err != nil {
		writeError(w, "stop", err)
		return
	}
	writeJSON(w, http.StatusOK, frameResponse(f, h.reports.Now(), h.reports.Location()))
}

// Cancel handles POST /api/cancel.
//
//	@Summary		Discard the current frame
//	@Tags			tracking
//	@Produce		json
//	@Success		200	{object}	FrameResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cancel [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	f, err := h.tracker.Cancel(r.Context())
	if err != nil {
		writeError(w, "cancel", err)
		return
	}
	writeJSON(w, http.StatusOK, frameResponse(f, h.reports.Now(), h.reports.Location()))
}

// Restart handles POST /api/restart.
//
//	@Summary		Restart the most recently stopped frame
//	@Tags			tracking
//	@Produce		json
//	@Success		201	{object}	FrameResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/restart [post]
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	f, err := h.tracker.Restart(r.Context())
	if err != nil {
		writeError(w, "restart", err)
		return
	}
	writeJSON(w, http.StatusCreated, frameResponse(f, h.reports.Now(), h.reports.Location()))
}

// ListFrames handles GET /api/frames.
//
//	@Summary		List frames, newest first
//	@Tags			frames
//	@Produce		json
//	@Param			from	query		string	false	"First day (YYYY-MM-DD)"
//	@Param			to		query		string	false	"Last day (YYYY-MM-DD)"
//	@Param			all		query		bool	false	"Ignore the date window"
//	@Success		200		{object}	FramesResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/frames [get]
func (h *Handler) ListFrames(w http.ResponseWriter, r *http.Request) {
	req, err := rangeRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	frames, err := h.reports.Log(r.Context(), req)
	if err != nil {
		writeError(w, "list frames", err)
		return
	}
	writeJSON(w, http.StatusOK, framesResponse(frames, h.reports.Now(), h.reports.Location()))
}

// EditFrame handles PATCH /api/frames/{id}.
//
//	@Summary		Edit a frame
//	@Tags			frames
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int			true	"Frame id"
//	@Param			body	body		EditRequest	true	"Fields to change"
//	@Success		200		{object}	FrameResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/frames/{id} [patch]
func (h *Handler) EditFrame(w http.ResponseWriter, r *http.Request) {
	id, ok := frameID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid frame id"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var body EditRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	f, err := h.tracker.Edit(r.Context(), tracker.EditRequest{
		ID:      id,
		Project: body.Project,
		Tags:    body.Tags,
		Start:   body.Start,
		End:     body.End,
	})
	if err != nil {
		writeError(w, "edit frame", err)
		return
	}
	writeJSON(w, http.StatusOK, frameResponse(f, h.reports.Now(), h.reports.Location()))
}

// DeleteFrame handles DELETE /api/frames/{id}.
//
//	@Summary		Delete a frame
//	@Tags			frames
//	@Param			id	path	int	true	"Frame id"
//	@Success		204	"Frame deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/frames/{id} [delete]
func (h *Handler) DeleteFrame(w http.ResponseWriter, r *http.Request) {
	id, ok := frameID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid frame id"))
		return
	}
	if err := h.tracker.Delete(r.Context(), id); err != nil {
		writeError(w, "delete frame", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Report handles GET /api/report.
//
//	@Summary		Total durations by project or tag
//	@Tags			queries
//	@Produce		json
//	@Param			by		query		string	false	"Grouping"	Enums(project, tag)
//	@Param			from	query		string	false	"First day (YYYY-MM-DD)"
//	@Param			to		query		string	false	"Last day (YYYY-MM-DD)"
//	@Param			all		query		bool	false	"Ignore the date window"
//	@Success		200		{object}	ReportResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/report [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	by, err := report.ParseGroupBy(r.URL.Query().Get("by"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	req, err := rangeRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	sum, err := h.reports.Report(r.Context(), req, by)
	if err != nil {
		writeError(w, "report", err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse(sum))
}

// Export handles GET /api/export.
//
//	@Summary		Export frames as JSON or CSV, oldest first
//	@Description	Exports every frame unless from or to is given.
//	@Tags			queries
//	@Produce		json
//	@Produce		text/csv
//	@Param			format	query	string	false	"Output format"	Enums(json, csv)
//	@Param			from	query	string	false	"First day (YYYY-MM-DD)"
//	@Param			to		query	string	false	"Last day (YYYY-MM-DD)"
//	@Param			all		query	bool	false	"Ignore the date window"
//	@Success		200
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	req, err := rangeRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	// Export covers every frame unless a window was asked for.
	if req.From == nil && req.To == nil {
		req.All = true
	}
	frames, err := h.reports.Chronological(r.Context(), req)
	if err != nil {
		writeError(w, "export", err)
		return
	}

	records := export.Records(frames, h.reports.Now(), h.reports.Location())
	if format == export.FormatCSV {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, format, records); err != nil {
		slog.Error("export write failed", slog.String("error", err.Error()))
	}
}

// Projects handles GET /api/projects.
//
//	@Summary		List every tracked project
//	@Tags			queries
//	@Produce		json
//	@Success		200	{object}	NamesResponse
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	names, err := h.reports.Projects(r.Context())
	if err != nil {
		writeError(w, "projects", err)
		return
	}
	writeJSON(w, http.StatusOK, NamesResponse{Names: names})
}

// Tags handles GET /api/tags.
//
//	@Summary		List every tag in use
//	@Tags			queries
//	@Produce		json
//	@Success		200	{object}	NamesResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	names, err := h.reports.Tags(r.Context())
	if err != nil {
		writeError(w, "tags", err)
		return
	}
	writeJSON(w, http.StatusOK, NamesResponse{Names: names})
}
