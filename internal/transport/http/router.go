package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airhealth/internal/middleware"
)

// NewRouter assembles the API routes with the standard middleware
// chain: request IDs first, then logging, metrics, panic recovery.
func NewRouter(h *Handler, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(logger))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", h.HealthCheck)
		r.Get("/monthly", h.GetMonthly)
		r.Post("/operations/run", h.RunPipeline)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
