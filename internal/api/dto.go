package api

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/starford/timer/internal/export"
	"github.com/starford/timer/internal/models"
	"github.com/starford/timer/internal/report"
)

// StartRequest is the request body for POST /api/start.
type StartRequest struct {
	Project string   `json:"project" example:"timer" validate:"required"`
	Tags    []string `json:"tags" example:"main"`
}

// EditRequest is the request body for PATCH /api/frames/{id}. Omitted
// fields are left unchanged; an empty tags array clears the tags.
type EditRequest struct {
	Project *string   `json:"project,omitempty" example:"timer"`
	Tags    *[]string `json:"tags,omitempty"`
	Start   *string   `json:"start,omitempty" example:"2025-01-10 09:00"`
	End     *string   `json:"end,omitempty" example:"17:30"`
}

// FrameResponse is a frame with its computed duration.
type FrameResponse struct {
	ID              int64    `json:"id" example:"42" validate:"required"`
	Project         string   `json:"project" example:"timer" validate:"required"`
	StartTime       string   `json:"start_time" example:"2025-01-10T09:00:00" validate:"required"`
	EndTime         *string  `json:"end_time"`
	Tags            []string `json:"tags" validate:"required"`
	DurationSeconds int64    `json:"duration_seconds" example:"5400" validate:"required"`
	Duration        string   `json:"duration" example:"1h 30m" validate:"required"`
	Running         bool     `json:"running"`
}

// StatusResponse describes the current tracking state.
type StatusResponse struct {
	Tracking bool           `json:"tracking"`
	Frame    *FrameResponse `json:"frame,omitempty"`
	Since    string         `json:"since,omitempty" example:"12 minutes ago"`
}

// FramesResponse wraps a frame listing.
type FramesResponse struct {
	Frames []FrameResponse `json:"frames" validate:"required"`
}

// GroupResponse is one row of a report.
type GroupResponse struct {
	Name            string `json:"name" example:"timer" validate:"required"`
	DurationSeconds int64  `json:"duration_seconds" validate:"required"`
	Duration        string `json:"duration" example:"2h 5m" validate:"required"`
}

// ReportResponse is an aggregated report.
type ReportResponse struct {
	By           string          `json:"by" example:"project" validate:"required"`
	Groups       []GroupResponse `json:"groups" validate:"required"`
	TotalSeconds int64           `json:"total_seconds"`
	Total        string          `json:"total" example:"3h 0m"`
	Empty        bool            `json:"empty"`
}

// NamesResponse wraps the project or tag listings.
type NamesResponse struct {
	Names []string `json:"names" validate:"required"`
}

func frameResponse(f *models.Frame, now time.Time, loc *time.Location) FrameResponse {
	rec := export.Records([]models.Frame{*f}, now, loc)[0]
	return FrameResponse{
		ID:              rec.ID,
		Project:         rec.Project,
		StartTime:       rec.StartTime,
		EndTime:         rec.EndTime,
		Tags:            rec.Tags,
		DurationSeconds: rec.DurationSeconds,
		Duration:        models.FormatDuration(f.Duration(now)),
		Running:         f.IsOpen(),
	}
}

func framesResponse(frames []models.Frame, now time.Time, loc *time.Location) FramesResponse {
	out := make([]FrameResponse, 0, len(frames))
	for i := range frames {
		out = append(out, frameResponse(&frames[i], now, loc))
	}
	return FramesResponse{Frames: out}
}

func statusResponse(f *models.Frame, now time.Time, loc *time.Location) StatusResponse {
	if f == nil {
		return StatusResponse{}
	}
	fr := frameResponse(f, now, loc)
	return StatusResponse{
		Tracking: true,
		Frame:    &fr,
		Since:    humanize.RelTime(f.Start, now, "ago", "from now"),
	}
}

func reportResponse(s *report.Summary) ReportResponse {
	groups := make([]GroupResponse, 0, len(s.Groups))
	for _, g := range s.Groups {
		groups = append(groups, GroupResponse{
			Name:            g.Name,
			DurationSeconds: g.Seconds,
			Duration:        models.FormatDuration(g.Duration),
		})
	}
	return ReportResponse{
		By:           s.GroupBy.String(),
		Groups:       groups,
		TotalSeconds: s.Seconds,
		Total:        models.FormatDuration(s.Total),
		Empty:        s.Empty,
	}
}
