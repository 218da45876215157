package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterConfig holds the collaborators wired into the HTTP routes.
type RouterConfig struct {
	Dispatcher         Dispatcher
	Transport          HealthChecker
	Log                zerolog.Logger
	LogIdentityHeaders bool
	DocInfo            DocInfo
}

// NewRouter creates a chi.Mux with all routes, middleware, and handlers configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	info := cfg.DocInfo
	if info.Title == "" {
		info = DefaultDocInfo
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(MetricsMiddleware)
	r.Use(RecoverMiddleware(cfg.Log))

	// Operational endpoints
	r.Get("/healthz", HealthzHandler())
	r.Get("/readyz", ReadyzHandler(cfg.Transport))
	r.Handle("/metrics", promhttp.Handler())

	// API documentation
	r.Get("/v3/api-docs", OpenAPIHandler(info))
	r.Get("/v3/api-docs.yaml", OpenAPIYAMLHandler(info))

	r.Route("/api/notifications", func(r chi.Router) {
		r.Post("/send", SendNotificationHandler(cfg.Dispatcher, cfg.LogIdentityHeaders))
	})

	return r
}
