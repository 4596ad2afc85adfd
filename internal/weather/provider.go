// Package weather defines the normalized weather domain model and the
// interface every upstream weather source implements.
package weather

import (
	"context"

	"github.com/roadcast/roadcast/internal/location"
)

// Provider defines the interface for weather data providers.
// Each call is a single upstream round trip; implementations do not retry.
type Provider interface {
	// GetCurrentWeather fetches current conditions for a location.
	GetCurrentWeather(ctx context.Context, loc location.Location) (*CurrentSnapshot, error)

	// GetForecast fetches the multi-day forecast for a location.
	GetForecast(ctx context.Context, loc location.Location) (*Forecast, error)

	// Name returns the provider name for logging.
	Name() string
}
