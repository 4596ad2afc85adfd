// Package resilience guards outbound provider calls with circuit breakers and
// per-call timeouts, and tracks provider health for the ops endpoints.
package resilience

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Trip thresholds for the weather provider. One warm sweep issues two calls
// per catalog location, so a failing sweep trips the breaker well before it
// finishes.
const (
	MinRequestsToTrip         = 6
	FailureRatioToTrip        = 0.5
	ConsecutiveFailuresToTrip = 4

	// DefaultCountWindow clears the closed-state counts, so failures from an
	// earlier sweep do not combine with the next one.
	DefaultCountWindow = 2 * time.Minute

	// DefaultOpenTimeout is how long the breaker stays open before probing.
	DefaultOpenTimeout = 30 * time.Second
)

// CircuitBreakerConfig configures the breaker in front of one provider.
// Zero values fall back to the defaults above.
type CircuitBreakerConfig struct {
	Name string

	// MaxRequests is how many probes pass while half-open.
	MaxRequests uint32

	CountWindow time.Duration
	OpenTimeout time.Duration

	// ReadyToTrip decides when the closed breaker opens.
	ReadyToTrip func(counts gobreaker.Counts) bool

	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// DefaultCircuitBreakerConfig returns the weather provider's breaker settings.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 1,
		CountWindow: DefaultCountWindow,
		OpenTimeout: DefaultOpenTimeout,
		ReadyToTrip: DefaultReadyToTrip,
	}
}

// LogStateChanges returns an OnStateChange hook that logs transitions.
// Opening the circuit is logged as a warning.
func LogStateChanges(logger zerolog.Logger) func(name string, from, to gobreaker.State) {
	return func(name string, from, to gobreaker.State) {
		evt := logger.Info()
		if to == gobreaker.StateOpen {
			evt = logger.Warn()
		}
		evt.Str("provider", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("circuit breaker state changed")
	}
}

// DefaultReadyToTrip opens the breaker on a run of consecutive failures, or
// once enough requests have been seen and at least half of them failed.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	if counts.ConsecutiveFailures >= ConsecutiveFailuresToTrip {
		return true
	}
	if counts.Requests < MinRequestsToTrip {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= FailureRatioToTrip
}

// NewCircuitBreaker builds a gobreaker from cfg.
func NewCircuitBreaker[T any](cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[T] {
	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1
	}
	window := cfg.CountWindow
	if window == 0 {
		window = DefaultCountWindow
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout == 0 {
		openTimeout = DefaultOpenTimeout
	}
	readyToTrip := cfg.ReadyToTrip
	if readyToTrip == nil {
		readyToTrip = DefaultReadyToTrip
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   maxRequests,
		Interval:      window,
		Timeout:       openTimeout,
		ReadyToTrip:   readyToTrip,
		OnStateChange: cfg.OnStateChange,
	})
}
