// Package travel answers weather queries for named places and rates their
// impact on transport. It reads through an expiring cache and fetches from
// the weather provider only on a miss.
package travel

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/roadcast/roadcast/internal/cache"
	"github.com/roadcast/roadcast/internal/impact"
	"github.com/roadcast/roadcast/internal/location"
	"github.com/roadcast/roadcast/internal/observability"
	"github.com/roadcast/roadcast/internal/weather"
)

// ServiceConfig holds configuration for the travel weather service.
type ServiceConfig struct {
	// Registry resolves location names (required).
	Registry *location.Registry

	// Provider is the weather data provider (required).
	Provider weather.Provider

	// Cache stores query results (optional).
	// If nil, a cache with the default TTL is created on Clock.
	Cache *Cache

	// Clock stamps results (optional, defaults to the real clock).
	Clock clockwork.Clock

	// Metrics records cache and upstream activity (optional).
	Metrics *observability.Metrics

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service provides weather and impact data for registered locations.
type Service struct {
	registry *location.Registry
	provider weather.Provider
	cache    *Cache
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewService creates a new travel weather service.
func NewService(cfg ServiceConfig) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	c := cfg.Cache
	if c == nil {
		c = NewCache(cache.Config{Clock: clock})
	}

	return &Service{
		registry: cfg.Registry,
		provider: cfg.Provider,
		cache:    c,
		clock:    clock,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// Locations returns every known location in catalog order.
func (s *Service) Locations() []location.Location {
	return s.registry.List()
}

// ResolveLocation looks a name up in the registry without fetching anything.
func (s *Service) ResolveLocation(name string) (location.Location, bool) {
	return s.registry.Resolve(name)
}

// GetCurrentWeather returns current conditions for a location.
// Returns false when the name is unknown or the provider has no data.
func (s *Service) GetCurrentWeather(ctx context.Context, name string) (*weather.CurrentSnapshot, bool) {
	loc, ok := s.registry.Resolve(name)
	if !ok {
		return nil, false
	}

	if v, ok := s.lookup(KindCurrent, loc); ok {
		return v.Current, true
	}

	snapshot, err := s.fetchCurrent(ctx, loc)
	if err != nil {
		return nil, false
	}

	s.store(KindCurrent, loc, CacheValue{Current: snapshot})
	return snapshot, true
}

// GetComprehensiveWeather returns current conditions, forecast and impact
// for a location. Returns false when the name is unknown or neither half
// could be fetched.
func (s *Service) GetComprehensiveWeather(ctx context.Context, name string) (*Comprehensive, bool) {
	loc, ok := s.registry.Resolve(name)
	if !ok {
		return nil, false
	}

	if v, ok := s.lookup(KindComprehensive, loc); ok {
		return v.Comprehensive, true
	}

	return s.refresh(ctx, loc)
}

// RefreshComprehensive fetches a location regardless of what is cached and
// stores the result. Used by the cache warmer.
func (s *Service) RefreshComprehensive(ctx context.Context, name string) (*Comprehensive, bool) {
	loc, ok := s.registry.Resolve(name)
	if !ok {
		return nil, false
	}
	return s.refresh(ctx, loc)
}

// GetMultiLocationWeather returns current conditions for each resolvable
// name, keyed by the catalog name. Unknown or failed locations are omitted.
func (s *Service) GetMultiLocationWeather(ctx context.Context, names []string) map[string]weather.CurrentSnapshot {
	seen := make(map[string]bool, len(names))
	locs := make([]location.Location, 0, len(names))
	for _, name := range names {
		loc, ok := s.registry.Resolve(name)
		if !ok || seen[loc.Name] {
			continue
		}
		seen[loc.Name] = true
		locs = append(locs, loc)
	}

	results := make([]*weather.CurrentSnapshot, len(locs))
	var wg sync.WaitGroup
	for i, loc := range locs {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			if snapshot, ok := s.GetCurrentWeather(ctx, name); ok {
				results[i] = snapshot
			}
		}(i, loc.Name)
	}
	wg.Wait()

	out := make(map[string]weather.CurrentSnapshot, len(locs))
	for i, snapshot := range results {
		if snapshot != nil {
			out[locs[i].Name] = *snapshot
		}
	}
	return out
}

// GetRouteWeather returns the weather at both ends of a route and the
// worst-case route assessment. A missing end yields the neutral assessment.
func (s *Service) GetRouteWeather(ctx context.Context, origin, destination string) RouteWeather {
	var (
		wg       sync.WaitGroup
		from, to *Comprehensive
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		from, _ = s.GetComprehensiveWeather(ctx, origin)
	}()
	go func() {
		defer wg.Done()
		to, _ = s.GetComprehensiveWeather(ctx, destination)
	}()
	wg.Wait()

	return RouteWeather{
		Origin:      from,
		Destination: to,
		RouteImpact: impact.CombineRoute(from.endpoint(), to.endpoint()),
	}
}

// ClearCache drops every cached result.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.setCacheGauge()
	s.logger.Info().Msg("weather cache cleared")
}

// CacheStats returns the cache contents, including expired entries.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// PurgeExpired removes expired cache entries and returns how many were dropped.
func (s *Service) PurgeExpired() int {
	n := s.cache.Purge()
	s.setCacheGauge()
	return n
}

// refresh fetches current conditions and forecast concurrently and builds
// the comprehensive result from whichever succeeded.
func (s *Service) refresh(ctx context.Context, loc location.Location) (*Comprehensive, bool) {
	var (
		wg          sync.WaitGroup
		current     *weather.CurrentSnapshot
		forecast    *weather.Forecast
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = s.fetchCurrent(ctx, loc)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = s.fetchForecast(ctx, loc)
	}()
	wg.Wait()

	if currentErr != nil && forecastErr != nil {
		return nil, false
	}

	result := &Comprehensive{
		Location:    loc,
		Current:     current,
		Hourly:      []weather.HourlyPoint{},
		Daily:       []weather.DailyAggregate{},
		LastUpdated: s.clock.Now(),
	}
	if forecast != nil {
		result.Hourly = forecast.Hourly
		result.Daily = forecast.Daily
	}

	if current != nil {
		result.Impact = impact.Classify(*current, result.Hourly)
		s.store(KindCurrent, loc, CacheValue{Current: current})
	} else {
		result.Impact = impact.NeutralAssessment()
	}

	// Partial results are served but not cached, so the next request
	// tries the missing half again.
	if currentErr == nil && forecastErr == nil {
		s.store(KindComprehensive, loc, CacheValue{Comprehensive: result})
	} else {
		s.logger.Warn().
			Str("location", loc.Name).
			Bool("current_available", currentErr == nil).
			Bool("forecast_available", forecastErr == nil).
			Msg("serving partial weather data")
	}

	return result, true
}

func (s *Service) fetchCurrent(ctx context.Context, loc location.Location) (*weather.CurrentSnapshot, error) {
	s.logger.Debug().
		Str("location", loc.Name).
		Str("provider", s.provider.Name()).
		Msg("fetching current weather from provider")

	start := s.clock.Now()
	snapshot, err := s.provider.GetCurrentWeather(ctx, loc)
	s.observeUpstream("current", start, err)
	if err != nil {
		s.logger.Error().Err(err).
			Str("location", loc.Name).
			Msg("failed to fetch current weather")
		return nil, err
	}
	return snapshot, nil
}

func (s *Service) fetchForecast(ctx context.Context, loc location.Location) (*weather.Forecast, error) {
	s.logger.Debug().
		Str("location", loc.Name).
		Str("provider", s.provider.Name()).
		Msg("fetching forecast from provider")

	start := s.clock.Now()
	forecast, err := s.provider.GetForecast(ctx, loc)
	s.observeUpstream("forecast", start, err)
	if err != nil {
		s.logger.Error().Err(err).
			Str("location", loc.Name).
			Msg("failed to fetch forecast")
		return nil, err
	}
	return forecast, nil
}

func (s *Service) lookup(kind QueryKind, loc location.Location) (CacheValue, bool) {
	v, ok := s.cache.Get(CacheKey{Kind: kind, Location: loc.Name})
	if s.metrics != nil {
		result := "miss"
		if ok {
			result = "hit"
		}
		s.metrics.CacheLookups.WithLabelValues(string(kind), result).Inc()
	}
	return v, ok
}

func (s *Service) store(kind QueryKind, loc location.Location, v CacheValue) {
	s.cache.Put(CacheKey{Kind: kind, Location: loc.Name}, v)
	s.setCacheGauge()
}

func (s *Service) setCacheGauge() {
	if s.metrics != nil {
		s.metrics.CacheEntries.Set(float64(s.cache.Stats().Size))
	}
}

func (s *Service) observeUpstream(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.UpstreamRequests.WithLabelValues(operation, outcome).Inc()
	s.metrics.UpstreamDuration.WithLabelValues(operation).Observe(s.clock.Since(start).Seconds())
}
