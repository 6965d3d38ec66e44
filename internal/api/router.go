package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/principals", s.handleRegister)

		// Authenticated routes: token resolves to a principal
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Active principals
			r.Group(func(r chi.Router) {
				r.Use(s.requireActive)

				r.Get("/auth/me", s.handleMe)
				r.Get("/principals/{id}", s.handleGetPrincipal)

				r.Route("/records", func(r chi.Router) {
					r.Get("/", s.handleListRecords)
					r.Post("/", s.handleCreateRecord)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", s.handleGetRecord)
						r.Patch("/", s.handleUpdateRecord)
						r.Delete("/", s.handleDeleteRecord)
					})
				})
			})

			// Admin-only
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/principals", s.handleListPrincipals)
				r.Patch("/principals/{id}", s.handleUpdatePrincipal)
				r.Delete("/principals/{id}", s.handleDeletePrincipal)
				r.Get("/audit", s.handleListAuditLogs)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
