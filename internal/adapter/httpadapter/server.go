package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
)

// ForecastSource provides the most recently loaded forecast.
type ForecastSource interface {
	Latest() (domain.Forecast, bool)
}

// Server exposes health, readiness, metrics, and forecast HTTP endpoints.
type Server struct {
	httpServer *http.Server
	forecasts  ForecastSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /storms routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, forecasts ForecastSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		forecasts: forecasts,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /storms", s.handleForecast)
	mux.HandleFunc("GET /storms/{name}", s.handleStorm)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleForecast(w http.ResponseWriter, _ *http.Request) {
	f, ok := s.forecasts.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no forecast yet"})
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// stormResponse is one storm's converted track alongside its raw tokens.
type stormResponse struct {
	IssueLabel string             `json:"issue_label,omitempty"`
	Track      domain.StormTrack  `json:"track"`
	Record     domain.StormRecord `json:"record"`
}

func (s *Server) handleStorm(w http.ResponseWriter, r *http.Request) {
	f, ok := s.forecasts.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no forecast yet"})
		return
	}

	name := r.PathValue("name")
	track, okTrack := f.Track(name)
	record, okRecord := f.Storms.Get(name)
	if !okTrack || !okRecord {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "unknown storm", "name": name})
		return
	}
	writeJSON(w, http.StatusOK, stormResponse{IssueLabel: f.IssueLabel, Track: track, Record: record})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
