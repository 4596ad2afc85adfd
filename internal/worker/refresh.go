package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/roadcast/roadcast/internal/location"
	"github.com/roadcast/roadcast/internal/observability"
	"github.com/roadcast/roadcast/internal/travel"
)

// Engine is the part of travel.Service the warmer drives.
type Engine interface {
	Locations() []location.Location
	RefreshComprehensive(ctx context.Context, name string) (*travel.Comprehensive, bool)
	PurgeExpired() int
}

// ImpactPublisher receives the results of each sweep. *publish.Writer implements it.
type ImpactPublisher interface {
	Publish(ctx context.Context, results []*travel.Comprehensive) error
}

// RefreshJob refreshes the cached weather of every configured location.
type RefreshJob struct {
	config    WarmerConfig
	engine    Engine
	publisher ImpactPublisher
	metrics   *observability.Metrics
	clock     clockwork.Clock
	logger    zerolog.Logger

	mu    sync.RWMutex
	stats RefreshStats
}

// RefreshStats tracks refresh job statistics across sweeps.
type RefreshStats struct {
	TotalSweeps         int64
	SuccessfulRefreshes int64
	FailedRefreshes     int64
	PublishFailures     int64

	LastSweepAt       time.Time
	LastSweepDuration time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config WarmerConfig
	Engine Engine

	// Publisher is optional; sweeps are not published when nil.
	Publisher ImpactPublisher

	// Metrics is optional.
	Metrics *observability.Metrics

	// Clock defaults to the real clock.
	Clock clockwork.Clock

	Logger zerolog.Logger
}

// NewRefreshJob creates a new refresh job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &RefreshJob{
		config:    cfg.Config.withDefaults(),
		engine:    cfg.Engine,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		clock:     clock,
		logger:    cfg.Logger.With().Str("component", "cache-warmer").Logger(),
	}
}

// RefreshResult contains the result of one sweep.
type RefreshResult struct {
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalLocations int
	Successful     int
	Failed         int
	FailedNames    []string
	Purged         int
	PublishErr     error
}

// Outcome classifies the sweep for metrics: complete, partial or failed.
func (r *RefreshResult) Outcome() string {
	switch {
	case r.Failed == 0:
		return "complete"
	case r.Successful == 0:
		return "failed"
	default:
		return "partial"
	}
}

// Run refreshes every target location through a bounded worker pool. One
// location failing never stops the others.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	start := j.clock.Now()
	names := j.targets()
	result := &RefreshResult{
		StartTime:      start,
		TotalLocations: len(names),
	}

	j.logger.Info().
		Int("locations", len(names)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting cache warm sweep")

	namesChan := make(chan string, len(names))
	resultsChan := make(chan locationResult, len(names))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, namesChan, resultsChan)
		}()
	}

	for _, name := range names {
		namesChan <- name
	}
	close(namesChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	published := make([]*travel.Comprehensive, 0, len(names))
	for lr := range resultsChan {
		if lr.result == nil {
			result.Failed++
			result.FailedNames = append(result.FailedNames, lr.name)
			continue
		}
		result.Successful++
		published = append(published, lr.result)
	}

	// Locations never picked up because ctx was cancelled count as failed.
	if missing := len(names) - result.Successful - result.Failed; missing > 0 {
		result.Failed += missing
	}

	result.Purged = j.engine.PurgeExpired()

	if j.publisher != nil && len(published) > 0 {
		if err := j.publisher.Publish(ctx, published); err != nil {
			result.PublishErr = err
			j.logger.Warn().Err(err).Msg("failed to publish sweep results")
		}
	}

	result.EndTime = j.clock.Now()
	result.Duration = result.EndTime.Sub(start)

	j.record(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("purged", result.Purged).
		Strs("failed_locations", result.FailedNames).
		Msg("cache warm sweep completed")

	return result
}

type locationResult struct {
	name   string
	result *travel.Comprehensive
}

func (j *RefreshJob) refreshWorker(ctx context.Context, names <-chan string, results chan<- locationResult) {
	for name := range names {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.refreshLocation(ctx, name)
		}
	}
}

func (j *RefreshJob) refreshLocation(ctx context.Context, name string) locationResult {
	locCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	comprehensive, ok := j.engine.RefreshComprehensive(locCtx, name)
	if !ok {
		j.logger.Debug().Str("location", name).Msg("location refresh failed")
		return locationResult{name: name}
	}
	return locationResult{name: name, result: comprehensive}
}

func (j *RefreshJob) targets() []string {
	if len(j.config.Locations) > 0 {
		return j.config.Locations
	}

	locs := j.engine.Locations()
	names := make([]string, len(locs))
	for i, loc := range locs {
		names[i] = loc.Name
	}
	return names
}

func (j *RefreshJob) record(result *RefreshResult) {
	j.mu.Lock()
	j.stats.TotalSweeps++
	j.stats.SuccessfulRefreshes += int64(result.Successful)
	j.stats.FailedRefreshes += int64(result.Failed)
	if result.PublishErr != nil {
		j.stats.PublishFailures++
	}
	j.stats.LastSweepAt = result.EndTime
	j.stats.LastSweepDuration = result.Duration
	j.mu.Unlock()

	if j.metrics == nil {
		return
	}
	j.metrics.WarmerSweeps.WithLabelValues(result.Outcome()).Inc()
	j.metrics.WarmerLocations.WithLabelValues("success").Add(float64(result.Successful))
	j.metrics.WarmerLocations.WithLabelValues("error").Add(float64(result.Failed))
	j.metrics.WarmerDuration.Observe(result.Duration.Seconds())
}

// Stats returns a copy of the accumulated statistics.
func (j *RefreshJob) Stats() RefreshStats {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.stats
}
