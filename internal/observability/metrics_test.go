package observability_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcast/roadcast/internal/observability"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := observability.NewMetricsForTesting()
	b := observability.NewMetricsForTesting()

	a.CacheLookups.WithLabelValues("current", "hit").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheLookups.WithLabelValues("current", "hit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheLookups.WithLabelValues("current", "hit")))
}

func TestMetrics_Register(t *testing.T) {
	m := observability.NewMetricsForTesting()
	reg := prometheus.NewRegistry()

	m.UpstreamRequests.WithLabelValues("current", "success").Inc()
	m.ImpactsPublished.Add(3)
	m.CacheEntries.Set(4)

	require.NoError(t, reg.Register(m.UpstreamRequests))
	require.NoError(t, reg.Register(m.ImpactsPublished))
	require.NoError(t, reg.Register(m.CacheEntries))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"roadcast_upstream_requests_total",
		"roadcast_impacts_published_total",
		"roadcast_cache_entries",
	}, names)
}
