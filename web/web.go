// Package web provides the JSON HTTP surface for the billing dashboard.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/operatorhq/creditwatch/adapters/metrics"
	"github.com/operatorhq/creditwatch/app"
)

// Handler provides the dashboard API endpoints.
type Handler struct {
	dashboard *app.DashboardService
	logger    zerolog.Logger
	metrics   *metrics.Collector
	version   string
}

// Deps contains dependencies for the web handler.
type Deps struct {
	Dashboard *app.DashboardService
	Logger    zerolog.Logger
	Metrics   *metrics.Collector
	Version   string
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		dashboard: deps.Dashboard,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		version:   version,
	}
}

// Router builds the HTTP router with all middleware and routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	if h.metrics != nil {
		r.Use(newMetricsMiddleware(h.metrics))
	}

	r.Get("/healthz", h.handleHealth)
	r.Get("/version", h.handleVersion)
	if h.metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/dashboard", h.handleDashboard)
	r.Get("/alerts", h.handleAlerts)
	r.Get("/export", h.handleExport)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "creditwatch",
		"version": h.version,
	})
}
