package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each component check on /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/isp/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Device routes
		r.Get("/celular", s.handleCelular)
		r.Get("/tablet", s.handleTablet)
		if s.cfg.LegacyRoutes {
			r.Get("/tablet/sin-chip", s.handleChiplessTablet)
		}

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Route("/{variant}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Get("/exercise", s.handleExerciseDevice)
				r.Get("/calls/{number}", s.handleDeviceCall)
			})
		})

		// Protected routes (open when no JWT secret is configured)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/invocations", s.handleListInvocations)
			r.Post("/auth/ws-ticket", s.handleWSTicket)
		})

		// WebSocket (auth via ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status and any component checks.
// A failing component marks the service degraded without failing the request.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
	}

	if len(s.health) > 0 {
		components := make(map[string]string, len(s.health))
		for name, checker := range s.health {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := checker.HealthCheck(ctx)
			cancel()
			if err != nil {
				components[name] = err.Error()
				resp["status"] = "degraded"
				continue
			}
			components[name] = "ok"
		}
		resp["components"] = components
	}

	writeJSON(w, http.StatusOK, resp)
}
