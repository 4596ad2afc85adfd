// Package main provides the entrypoint for the roadcast API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/roadcast/roadcast/internal/api"
	"github.com/roadcast/roadcast/internal/api/middleware"
	"github.com/roadcast/roadcast/internal/auth"
	"github.com/roadcast/roadcast/internal/cache"
	"github.com/roadcast/roadcast/internal/config"
	"github.com/roadcast/roadcast/internal/location"
	"github.com/roadcast/roadcast/internal/observability"
	"github.com/roadcast/roadcast/internal/provider/resilience"
	"github.com/roadcast/roadcast/internal/publish"
	"github.com/roadcast/roadcast/internal/telemetry"
	"github.com/roadcast/roadcast/internal/travel"
	"github.com/roadcast/roadcast/internal/weather/openweathermap"
	"github.com/roadcast/roadcast/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "roadcast-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting roadcast API")

	// A missing OWM_API_KEY is reported here, once, instead of on every request.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	engineMetrics := observability.NewMetrics()

	// Upstream weather provider
	providers := resilience.NewRegistry()
	cbConfig := resilience.DefaultCircuitBreakerConfig(openweathermap.ProviderName)
	cbConfig.OnStateChange = resilience.LogStateChanges(log)
	owmClient := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:  cfg.Weather.APIKey,
		BaseURL: cfg.Weather.BaseURL,
		HTTPClient: resilience.NewClient(resilience.ClientConfig{
			Name:           openweathermap.ProviderName,
			Timeout:        cfg.Weather.Timeout,
			CircuitBreaker: &cbConfig,
			Registry:       providers,
		}),
		Logger: log,
	})

	registry := location.NewDefaultRegistry()
	service := travel.NewService(travel.ServiceConfig{
		Registry: registry,
		Provider: owmClient,
		Cache:    travel.NewCache(cache.Config{TTL: cfg.CacheTTL}),
		Metrics:  engineMetrics,
		Logger:   log,
	})
	log.Info().
		Int("locations", registry.Len()).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("weather service initialized")

	// Impact publishing (optional)
	var publisher worker.ImpactPublisher
	if cfg.Kafka.Enabled() {
		writer := publish.NewWriter(cfg.Kafka, engineMetrics, log)
		defer func() {
			if closeErr := writer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close impact publisher")
			}
		}()
		publisher = writer
		log.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.ImpactTopic).
			Msg("impact publishing enabled")
	}

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.WarmerConfig{
			Interval:    cfg.Warmer.Interval,
			Concurrency: cfg.Warmer.Concurrency,
		},
		Engine:    service,
		Publisher: publisher,
		Metrics:   engineMetrics,
		Logger:    log,
	})

	if cfg.Warmer.Enabled {
		scheduler := worker.NewScheduler(refreshJob, cfg.Warmer.Interval, log)
		if err := scheduler.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start cache warmer")
		}
		defer scheduler.Stop()
	}

	// Job intake (optional)
	if cfg.PubSub.Enabled() {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSub.ProjectID,
			SubscriptionName: cfg.PubSub.Subscription,
			Processor: worker.NewJobProcessor(worker.JobProcessorConfig{
				RefreshJob: refreshJob,
				Cache:      service,
				Metrics:    engineMetrics,
				Logger:     log,
			}),
			Logger: log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Run(ctx); err != nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	}

	// Admin token verification (optional)
	var authorizer middleware.TokenAuthorizer
	if cfg.Admin.SigningKey != "" {
		jwtService, err := auth.NewJWTService(auth.JWTConfig{
			SigningKey: cfg.Admin.SigningKey,
			Issuer:     cfg.Admin.Issuer,
			Audience:   cfg.Admin.Audience,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize admin token verification")
		}
		authorizer = jwtService
	} else {
		log.Warn().Msg("ADMIN_JWT_SIGNING_KEY not set - admin endpoints disabled")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        httpMetrics,
		Service:        service,
		Providers:      providers,
		Authorizer:     authorizer,
		MetricsHandler: promhttp.Handler(),
		RequireTLS:     cfg.RequireTLS,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
