// Package server exposes the dispatcher's operational HTTP surface:
// liveness, a status snapshot, and Prometheus metrics.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/okkyPratama/jira-task-automation/internal/dispatcher"
	"github.com/okkyPratama/jira-task-automation/internal/telemetry"
	"github.com/okkyPratama/jira-task-automation/internal/version"
)

// StatusSource provides the dispatcher snapshot for the status endpoint.
type StatusSource interface {
	Snapshot() dispatcher.Status
}

// Server bundles the ops HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// New builds the ops server on addr.
func New(addr string, status StatusSource, logger zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		payload := struct {
			Version string            `json:"version"`
			Now     time.Time         `json:"now"`
			Daemon  dispatcher.Status `json:"daemon"`
		}{
			Version: version.Version,
			Now:     time.Now(),
			Daemon:  status.Snapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error().Err(err).Msg("encode status response")
		}
	})

	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With().Str("component", "ops_server").Logger(),
	}
}

// HTTPServer returns the underlying server for lifecycle management.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}
