// Package http exposes the dashboard API plus the operational health,
// readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/valleywatch/news-threat-etl/internal/domain"
)

// Ingestor runs ingestion and reprocessing cycles.
type Ingestor interface {
	Ingest(ctx context.Context) ([]domain.Article, error)
	Reprocess(ctx context.Context) error
	CheckReadiness(ctx context.Context) error
}

// AlertReader reads the persisted alert collection.
type AlertReader interface {
	Load() []domain.Alert
}

// Server hosts the API over a chi router.
type Server struct {
	httpServer *http.Server
	ingestor   Ingestor
	alerts     AlertReader
	logger     *slog.Logger
}

// NewServer creates the API server with all routes registered.
func NewServer(addr string, ingestor Ingestor, alerts AlertReader, logger *slog.Logger) *Server {
	s := &Server{
		ingestor: ingestor,
		alerts:   alerts,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	// The dashboard frontend is served from another origin.
	r.Route("/api", func(r chi.Router) {
		r.Use(allowAllOrigins)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/news", s.handleNews)
		r.Get("/process-news", s.handleProcessNews)
		r.Get("/force-update", s.handleForceUpdate)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // ingestion runs inside the request
		IdleTimeout:  60 * time.Second,
	}
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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ingestor.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleAlerts returns the full alert collection. The store already treats
// any read failure as an empty collection, so this never errors.
func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	alerts := s.alerts.Load()
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// handleNews runs a full ingestion cycle followed by reprocessing and
// returns the resulting article collection.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.ingestor.Ingest(r.Context())
	if err != nil {
		s.logger.Error("ingest failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.ingestor.Reprocess(r.Context()); err != nil {
		s.logger.Warn("reprocess after ingest aborted", "error", err)
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

// handleProcessNews re-runs scoring and alert building over the stored
// articles without fetching.
func (s *Server) handleProcessNews(w http.ResponseWriter, r *http.Request) {
	if err := s.ingestor.Reprocess(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:      "success",
		Message:     "News processing completed",
		AlertsCount: len(s.alerts.Load()),
	})
}

// handleForceUpdate runs ingestion plus reprocessing and reports the alert
// count.
func (s *Server) handleForceUpdate(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ingestor.Ingest(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	if err := s.ingestor.Reprocess(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:      "success",
		Message:     "Force update completed",
		AlertsCount: len(s.alerts.Load()),
	})
}

type statusResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	AlertsCount int    `json:"alerts_count,omitempty"`
}

// allowAllOrigins is the permissive CORS policy the map dashboard relies on.
func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
