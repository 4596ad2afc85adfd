// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// ErrMissingAPIKey is returned when OWM_API_KEY is not set.
var ErrMissingAPIKey = errors.New("OWM_API_KEY is required")

var validate = validator.New()

// Config is the full process configuration.
type Config struct {
	Port       string `validate:"required,numeric"`
	Env        string `validate:"required"`
	LogLevel   zerolog.Level
	RequireTLS bool

	Weather   WeatherConfig
	CacheTTL  time.Duration `validate:"gt=0"`
	Warmer    WarmerConfig
	Admin     AdminConfig
	Telemetry TelemetryConfig
	Kafka     KafkaConfig
	PubSub    PubSubConfig
}

// WeatherConfig configures the OpenWeatherMap provider.
type WeatherConfig struct {
	APIKey  string
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// WarmerConfig configures the periodic cache warmer.
type WarmerConfig struct {
	Enabled     bool
	Interval    time.Duration `validate:"gt=0"`
	Concurrency int           `validate:"min=1,max=32"`
}

// AdminConfig configures admin bearer-token verification.
// Admin endpoints are disabled when SigningKey is empty.
type AdminConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64 `validate:"gte=0,lte=1"`
}

// KafkaConfig configures impact publishing. Publishing is disabled when
// Brokers is empty.
type KafkaConfig struct {
	Brokers     []string
	ImpactTopic string `validate:"required_with=Brokers"`
}

// PubSubConfig configures job intake. Intake is disabled when either field is empty.
type PubSubConfig struct {
	ProjectID    string
	Subscription string
}

// Enabled reports whether job intake is configured.
func (p PubSubConfig) Enabled() bool {
	return p.ProjectID != "" && p.Subscription != ""
}

// Enabled reports whether impact publishing is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load reads configuration from the environment. Variables may be preloaded
// from the given .env files (default ".env"); a missing file is not an error
// and variables already set in the environment take precedence.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := &Config{
		Port: getEnvOrDefault("APP_PORT", "8080"),
		Env:  getEnvOrDefault("APP_ENV", "development"),
		Weather: WeatherConfig{
			APIKey:  os.Getenv("OWM_API_KEY"),
			BaseURL: getEnvOrDefault("OWM_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		},
		Admin: AdminConfig{
			SigningKey: os.Getenv("ADMIN_JWT_SIGNING_KEY"),
			Issuer:     getEnvOrDefault("ADMIN_JWT_ISSUER", "roadcast"),
			Audience:   getEnvOrDefault("ADMIN_JWT_AUDIENCE", "roadcast-admin"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(os.Getenv("KAFKA_BROKERS")),
			ImpactTopic: getEnvOrDefault("KAFKA_IMPACT_TOPIC", "transport-impacts"),
		},
		PubSub: PubSubConfig{
			ProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
			Subscription: os.Getenv("PUBSUB_SUBSCRIPTION"),
		},
	}

	var err error
	if cfg.LogLevel, err = zerolog.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.Weather.Timeout, err = parseDuration("OWM_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.Warmer.Enabled, err = parseBool("WARMER_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.Warmer.Interval, err = parseDuration("WARMER_INTERVAL", "5m"); err != nil {
		return nil, err
	}
	if cfg.Warmer.Concurrency, err = parseInt("WARMER_CONCURRENCY", 3); err != nil {
		return nil, err
	}
	if cfg.Telemetry.Enabled, err = parseBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Telemetry.SampleRatio, err = parseFloat("OTEL_SAMPLE_RATIO", 1); err != nil {
		return nil, err
	}
	if cfg.RequireTLS, err = parseBool("REQUIRE_TLS", false); err != nil {
		return nil, err
	}

	if cfg.Weather.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
