// Package main provides the entrypoint for the roadcast worker. The worker
// sweeps every location on a schedule and publishes the impact assessments to
// Kafka; Pub/Sub jobs can trigger extra sweeps.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/roadcast/roadcast/internal/cache"
	"github.com/roadcast/roadcast/internal/config"
	"github.com/roadcast/roadcast/internal/location"
	"github.com/roadcast/roadcast/internal/observability"
	"github.com/roadcast/roadcast/internal/provider/resilience"
	"github.com/roadcast/roadcast/internal/publish"
	"github.com/roadcast/roadcast/internal/travel"
	"github.com/roadcast/roadcast/internal/weather/openweathermap"
	"github.com/roadcast/roadcast/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "roadcast-worker").
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting roadcast worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	if !cfg.Kafka.Enabled() {
		log.Warn().Msg("KAFKA_BROKERS not set - sweeps will only be logged")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	cbConfig := resilience.DefaultCircuitBreakerConfig(openweathermap.ProviderName)
	cbConfig.OnStateChange = resilience.LogStateChanges(log)
	service := travel.NewService(travel.ServiceConfig{
		Registry: location.NewDefaultRegistry(),
		Provider: openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:  cfg.Weather.APIKey,
			BaseURL: cfg.Weather.BaseURL,
			HTTPClient: resilience.NewClient(resilience.ClientConfig{
				Name:           openweathermap.ProviderName,
				Timeout:        cfg.Weather.Timeout,
				CircuitBreaker: &cbConfig,
			}),
			Logger: log,
		}),
		Cache:   travel.NewCache(cache.Config{TTL: cfg.CacheTTL}),
		Metrics: metrics,
		Logger:  log,
	})

	var publisher worker.ImpactPublisher
	if cfg.Kafka.Enabled() {
		writer := publish.NewWriter(cfg.Kafka, metrics, log)
		defer func() {
			if closeErr := writer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close impact publisher")
			}
		}()
		publisher = writer
	}

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.WarmerConfig{
			Interval:    cfg.Warmer.Interval,
			Concurrency: cfg.Warmer.Concurrency,
		},
		Engine:    service,
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    log,
	})

	scheduler := worker.NewScheduler(refreshJob, cfg.Warmer.Interval, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start sweep scheduler")
	}
	defer scheduler.Stop()

	if cfg.PubSub.Enabled() {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSub.ProjectID,
			SubscriptionName: cfg.PubSub.Subscription,
			Processor: worker.NewJobProcessor(worker.JobProcessorConfig{
				RefreshJob: refreshJob,
				Cache:      service,
				Metrics:    metrics,
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

	// Health and metrics endpoints for the container platform.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := refreshJob.Stats()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck // best effort
			"status":          "healthy",
			"version":         Version,
			"sweeps":          stats.TotalSweeps,
			"lastSweepAt":     stats.LastSweepAt,
			"publishFailures": stats.PublishFailures,
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
