package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/roadcast/roadcast/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Requests per window
	RequestLimit int
	// Window duration
	WindowLength time.Duration
}

var (
	// ExpensiveRateLimit applies to fan-out endpoints that may trigger
	// several upstream fetches per request (30 req/min).
	ExpensiveRateLimit = RateLimitConfig{
		RequestLimit: 30,
		WindowLength: time.Minute,
	}

	// StandardRateLimit applies to single-location endpoints (100 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}

	// AdminRateLimit applies to the admin endpoints (10 req/min).
	AdminRateLimit = RateLimitConfig{
		RequestLimit: 10,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP creates a rate limiter middleware keyed on the client IP.
// Uses X-Forwarded-For if present (extracted by chi's RealIP middleware).
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceeded(cfg)),
	)
}

// RateLimitBySubject creates a rate limiter keyed on the authenticated token
// subject, falling back to the client IP.
func RateLimitBySubject(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyBySubjectOrIP),
		httprate.WithLimitHandler(rateLimitExceeded(cfg)),
	)
}

func keyBySubjectOrIP(r *http.Request) (string, error) {
	if subject := GetSubject(r.Context()); subject != "" {
		return "sub:" + subject, nil
	}
	return httprate.KeyByRealIP(r)
}

// rateLimitExceeded writes a 429 problem. httprate does not expose the exact
// reset time, so Retry-After is the full window.
func rateLimitExceeded(cfg RateLimitConfig) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(cfg.WindowLength.Seconds()))
	return func(w http.ResponseWriter, r *http.Request) {
		problem := models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
		problem.Instance = r.URL.Path
		w.Header().Set("Retry-After", retryAfter)
		problem.Write(w)
	}
}
