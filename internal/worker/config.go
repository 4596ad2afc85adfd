// Package worker keeps the weather cache warm in the background and accepts
// cache jobs from Pub/Sub.
package worker

import (
	"time"
)

// WarmerConfig holds configuration for the cache warmer.
type WarmerConfig struct {
	// Locations are the names to refresh on each sweep.
	// If empty, every registered location is refreshed.
	Locations []string

	// Interval is the time between scheduled sweeps.
	// Default: 5 minutes
	Interval time.Duration

	// Concurrency is the number of locations refreshed at once.
	// Default: 3
	Concurrency int

	// Timeout bounds the refresh of a single location.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultWarmerConfig returns the default warmer configuration.
func DefaultWarmerConfig() WarmerConfig {
	return WarmerConfig{
		Interval:    5 * time.Minute,
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

func (c WarmerConfig) withDefaults() WarmerConfig {
	def := DefaultWarmerConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}
