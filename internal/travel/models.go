package travel

import (
	"strings"
	"time"

	"github.com/roadcast/roadcast/internal/cache"
	"github.com/roadcast/roadcast/internal/impact"
	"github.com/roadcast/roadcast/internal/location"
	"github.com/roadcast/roadcast/internal/weather"
)

// QueryKind distinguishes cached query shapes for the same location.
type QueryKind string

const (
	KindCurrent       QueryKind = "current"
	KindComprehensive QueryKind = "comprehensive"
)

// CacheKey identifies one cached query result.
type CacheKey struct {
	Kind     QueryKind
	Location string
}

func (k CacheKey) String() string {
	return string(k.Kind) + ":" + strings.ToLower(k.Location)
}

// CacheValue holds the result of one query kind; only the field matching
// the key's kind is set.
type CacheValue struct {
	Current       *weather.CurrentSnapshot
	Comprehensive *Comprehensive
}

// Cache is the expiring cache the service reads through.
type Cache = cache.Cache[CacheKey, CacheValue]

// NewCache creates a cache suitable for ServiceConfig.Cache.
func NewCache(cfg cache.Config) *Cache {
	return cache.New[CacheKey, CacheValue](cfg)
}

// Comprehensive is the full picture for one location.
// Current is nil when only the forecast could be fetched; Impact is then
// the neutral assessment.
type Comprehensive struct {
	Location    location.Location        `json:"location"`
	Current     *weather.CurrentSnapshot `json:"current"`
	Hourly      []weather.HourlyPoint    `json:"hourly"`
	Daily       []weather.DailyAggregate `json:"daily"`
	Impact      impact.Assessment        `json:"impact"`
	LastUpdated time.Time                `json:"lastUpdated"`
}

// Complete reports whether both current conditions and forecast are present.
func (c *Comprehensive) Complete() bool {
	return c.Current != nil && len(c.Hourly) > 0
}

// endpoint converts c for route aggregation; nil when current conditions
// are unknown.
func (c *Comprehensive) endpoint() *impact.EndpointAssessment {
	if c == nil || c.Current == nil {
		return nil
	}
	return &impact.EndpointAssessment{
		Name:         c.Location.Name,
		TemperatureC: c.Current.TemperatureC,
		VisibilityKm: c.Current.VisibilityKm,
		Assessment:   c.Impact,
	}
}

// RouteWeather is the weather at both ends of a route and the combined verdict.
// Origin or Destination is nil when that end is unknown or unavailable.
type RouteWeather struct {
	Origin      *Comprehensive    `json:"origin"`
	Destination *Comprehensive    `json:"destination"`
	RouteImpact impact.Assessment `json:"routeImpact"`
}

// TransportationForecast is a day-by-day outlook for planning services.
type TransportationForecast struct {
	Location      string                   `json:"location"`
	Forecast      []weather.DailyAggregate `json:"forecast"`
	Advisories    []string                 `json:"advisories"`
	FavorableDays []string                 `json:"favorableDays"`
	CautionDays   []string                 `json:"cautionDays"`
}
