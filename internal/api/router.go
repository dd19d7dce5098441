package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const patchRateLimit = 20

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/devices", s.handleListDevices)
		r.Get("/devices/configured", s.handleListConfiguredDevices)

		r.Get("/config", s.handleGetConfig)
		r.With(s.rateLimitMiddleware(patchRateLimit, rateLimitWindow)).Patch("/config", s.handlePatchConfig)

		r.Get("/audit", s.handleListAudit)

		r.With(s.rateLimitMiddleware(patchRateLimit, rateLimitWindow)).Put("/context/{key}", s.handleSetContext)
	})

	r.Get("/ws", s.handleWebSocket)

	return r
}

// handleHealth reports liveness: the server responds, nothing more.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
