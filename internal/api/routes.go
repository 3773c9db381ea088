package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Distribution
	mux.Handle("GET /api/v1/distribution", chain(http.HandlerFunc(h.GetDistribution)))
	mux.Handle("PUT /api/v1/distribution/{activity}", chain(http.HandlerFunc(h.SetActivityWeight)))
	mux.Handle("PUT /api/v1/distribution/{activity}/enabled", chain(http.HandlerFunc(h.SetActivityEnabled)))

	// Schedule
	mux.Handle("GET /api/v1/schedule", chain(http.HandlerFunc(h.GetSchedule)))
	mux.Handle("POST /api/v1/schedule/regenerate", chain(http.HandlerFunc(h.RegenerateSchedule)))

	// Jobs
	mux.Handle("GET /api/v1/jobs", chain(http.HandlerFunc(h.ListJobs)))
	mux.Handle("GET /api/v1/jobs/{id}", chain(http.HandlerFunc(h.GetJob)))

	// Dispatch control
	mux.Handle("GET /api/v1/dispatch", chain(http.HandlerFunc(h.GetDispatchState)))
	mux.Handle("POST /api/v1/dispatch/pause", chain(http.HandlerFunc(h.PauseDispatch)))
	mux.Handle("POST /api/v1/dispatch/resume", chain(http.HandlerFunc(h.ResumeDispatch)))
	mux.Handle("POST /api/v1/dispatch/tick", chain(http.HandlerFunc(h.TriggerTick)))

	// Sessions
	mux.Handle("GET /api/v1/sessions", chain(http.HandlerFunc(h.ListSessions)))
	mux.Handle("POST /api/v1/sessions/disconnect", chain(http.HandlerFunc(h.DisconnectSession)))
}
