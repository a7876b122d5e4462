package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(h *Handler, authEnabled bool, token string) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Tracking state.
	r.Get("/status", h.Status)
	r.Post("/start", h.Start)
	r.Post("/stop", h.Stop)
	r.Post("/cancel", h.Cancel)
	r.Post("/restart", h.Restart)

	// Frames.
	r.Get("/frames", h.ListFrames)
	r.Patch("/frames/{id}", h.EditFrame)
	r.Delete("/frames/{id}", h.DeleteFrame)

	// Queries.
	r.Get("/report", h.Report)
	r.Get("/export", h.Export)
	r.Get("/projects", h.Projects)
	r.Get("/tags", h.Tags)

	return r
}
