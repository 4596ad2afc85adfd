// Package api provides the HTTP API for roadcast.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/roadcast/roadcast/internal/api/handler"
	"github.com/roadcast/roadcast/internal/api/middleware"
	"github.com/roadcast/roadcast/internal/api/response"
	"github.com/roadcast/roadcast/internal/auth"
	"github.com/roadcast/roadcast/internal/travel"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Service     *travel.Service

	// Providers feeds the readiness and status endpoints (optional).
	Providers handler.ProviderHealthSource

	// Authorizer guards /v1/admin. When nil the admin endpoints answer 503.
	Authorizer middleware.TokenAuthorizer

	// MetricsHandler is mounted at /metrics when set (promhttp).
	MetricsHandler http.Handler

	RequireTLS bool
	Clock      clockwork.Clock
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "roadcast-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no such endpoint")
	})

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Providers: cfg.Providers,
		Cache:     cfg.Service,
		Clock:     cfg.Clock,
	})
	weatherHandler := handler.NewWeatherHandler(cfg.Service)
	adminHandler := handler.NewAdminHandler(cfg.Service, cfg.Logger)

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public, not rate limited for probes)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.With(standardRateLimit).Get("/locations", weatherHandler.ListLocations)

		r.Route("/weather", func(r chi.Router) {
			r.With(expensiveRateLimit).Get("/", weatherHandler.GetMulti)
			r.Route("/{location}", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", weatherHandler.GetCurrent)
				r.Get("/comprehensive", weatherHandler.GetComprehensive)
				r.Get("/transport-forecast", weatherHandler.GetTransportForecast)
			})
		})

		r.With(expensiveRateLimit).Get("/routes/weather", weatherHandler.GetRoute)

		r.Route("/admin", func(r chi.Router) {
			if cfg.Authorizer == nil {
				r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
					response.ServiceUnavailable(w, r, "admin endpoints are disabled")
				})
				return
			}

			r.Use(middleware.RequireScope(cfg.Authorizer, auth.ScopeCacheAdmin))
			r.Use(middleware.RateLimitBySubject(middleware.AdminRateLimit))
			r.Get("/cache", adminHandler.GetCache)
			r.Delete("/cache", adminHandler.ClearCache)
		})
	})

	return r
}
