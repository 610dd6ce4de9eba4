// Package api exposes the latest pipeline results over a read-only HTTP feed.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/trainlog/internal/adapters/repository"
	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/report"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Latest returns the most recent report.
	Latest(ctx context.Context) (report.Report, error)
	// Trend returns stored trend points within [from, to].
	Trend(ctx context.Context, from, to model.Date) ([]model.TrendPoint, error)
	// Runs lists stored run summaries, newest first.
	Runs(ctx context.Context, limit int) ([]Run, error)
	// Reload re-reads the configured sources and recomputes everything.
	Reload(ctx context.Context) (Run, error)
}

// Run mirrors the read shape of a stored run.
type Run = repository.Run

// Server wires HTTP routes for the read API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	reportHandler   *ReportHandler
	trendHandler    *TrendHandler
	sessionsHandler *SessionsHandler
	runsHandler     *RunsHandler
	reloadHandler   *ReloadHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRuns int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		reportHandler:   NewReportHandler(deps),
		trendHandler:    NewTrendHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
		runsHandler:     NewRunsHandler(deps, maxRuns),
		reloadHandler:   NewReloadHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/report", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
	mux.HandleFunc("/report/kpis", MetricsMiddleware(s.reportHandler.HandleKPIs, "kpis"))
	mux.HandleFunc("/report/weekly", MetricsMiddleware(s.reportHandler.HandleWeekly, "weekly"))
	mux.HandleFunc("/report/recovery", MetricsMiddleware(s.reportHandler.HandleRecovery, "recovery"))
	mux.HandleFunc("/trend", MetricsMiddleware(s.trendHandler.HandleTrend, "trend"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleGetSessions, "sessions"))
	mux.HandleFunc("/runs", MetricsMiddleware(s.runsHandler.HandleGetRuns, "runs"))
	mux.HandleFunc("/reload", MetricsMiddleware(s.reloadHandler.HandlePostReload, "reload"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeLookupError maps repository errors onto status codes.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidRange), errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// parseDate reads an optional YYYY-MM-DD query parameter.
func parseDate(r *http.Request, key string, fallback model.Date) (model.Date, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return 0, errors.New("invalid " + key + "; must be YYYY-MM-DD")
	}
	return model.DateOf(t), nil
}
