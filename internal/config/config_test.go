package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcast/roadcast/internal/config"
)

var envKeys = []string{
	"APP_PORT", "APP_ENV", "LOG_LEVEL", "REQUIRE_TLS",
	"OWM_API_KEY", "OWM_BASE_URL", "OWM_TIMEOUT",
	"CACHE_TTL", "WARMER_ENABLED", "WARMER_INTERVAL", "WARMER_CONCURRENCY",
	"ADMIN_JWT_SIGNING_KEY", "ADMIN_JWT_ISSUER", "ADMIN_JWT_AUDIENCE",
	"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SAMPLE_RATIO",
	"KAFKA_BROKERS", "KAFKA_IMPACT_TOPIC",
	"PUBSUB_PROJECT_ID", "PUBSUB_SUBSCRIPTION",
}

// clearEnv blanks every variable Load reads so the host environment does
// not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OWM_API_KEY", "****")

	cfg, err := config.Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.RequireTLS)
	assert.Equal(t, "****", cfg.Weather.APIKey)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.Weather.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Warmer.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Warmer.Interval)
	assert.Equal(t, 3, cfg.Warmer.Concurrency)
	assert.Empty(t, cfg.Admin.SigningKey)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.InDelta(t, 1.0, cfg.Telemetry.SampleRatio, 0)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.PubSub.Enabled())
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(noEnvFile(t))
	require.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OWM_API_KEY", "****")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REQUIRE_TLS", "true")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("WARMER_ENABLED", "false")
	t.Setenv("WARMER_CONCURRENCY", "8")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("PUBSUB_PROJECT_ID", "roadcast-dev")
	t.Setenv("PUBSUB_SUBSCRIPTION", "roadcast-jobs")

	cfg, err := config.Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.RequireTLS)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.Warmer.Enabled)
	assert.Equal(t, 8, cfg.Warmer.Concurrency)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "transport-impacts", cfg.Kafka.ImpactTopic)
	assert.True(t, cfg.Kafka.Enabled())
	assert.True(t, cfg.PubSub.Enabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"OWM_TIMEOUT", "soon"},
		{"CACHE_TTL", "-1m"},
		{"WARMER_INTERVAL", "0s"},
		{"WARMER_CONCURRENCY", "many"},
		{"WARMER_CONCURRENCY", "0"},
		{"WARMER_ENABLED", "maybe"},
		{"REQUIRE_TLS", "sometimes"},
		{"LOG_LEVEL", "loud"},
		{"APP_PORT", "http"},
		{"OWM_BASE_URL", "not a url"},
		{"OTEL_SAMPLE_RATIO", "half"},
		{"OTEL_SAMPLE_RATIO", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("OWM_API_KEY", "****")
			t.Setenv(tt.key, tt.value)

			_, err := config.Load(noEnvFile(t))
			require.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	// godotenv only fills variables that are absent, so unset rather than
	// blank them. clearEnv restores the originals on cleanup.
	clearEnv(t)
	for _, key := range envKeys {
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("APP_ENV", "staging")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OWM_API_KEY=****\nAPP_PORT=7070\nAPP_ENV=production\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "****", cfg.Weather.APIKey)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "staging", cfg.Env, "process environment wins over the file")
}
