package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/roadcast/roadcast/internal/api/middleware"
)

func newMeteredRouter(t *testing.T) (*chi.Mux, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := middleware.NewMetricsWithMeter(mp.Meter("test"))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/v1/weather/{location}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "location") == "atlantis" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	return r, reader
}

func requestTotals(t *testing.T, reader *sdkmetric.ManualReader) []metricdata.DataPoint[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http.server.request.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			return sum.DataPoints
		}
	}
	t.Fatal("http.server.request.total not recorded")
	return nil
}

func TestNewMetrics(t *testing.T) {
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics)
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	r, reader := newMeteredRouter(t)

	for _, name := range []string{"colombo", "kandy", "galle"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/weather/"+name, http.NoBody))
	}

	points := requestTotals(t, reader)
	require.Len(t, points, 1)
	assert.Equal(t, int64(3), points[0].Value)

	route, ok := points[0].Attributes.Value("http.route")
	require.True(t, ok)
	assert.Equal(t, "/v1/weather/{location}", route.AsString())
}

func TestMetrics_SeparatesStatusCodes(t *testing.T) {
	r, reader := newMeteredRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/weather/colombo", http.NoBody))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/weather/atlantis", http.NoBody))

	points := requestTotals(t, reader)
	require.Len(t, points, 2)

	statuses := map[string]bool{}
	for _, p := range points {
		status, ok := p.Attributes.Value("http.response.status_code")
		require.True(t, ok)
		statuses[status.AsString()] = true
	}
	assert.True(t, statuses["200"])
	assert.True(t, statuses["404"])
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	r, reader := newMeteredRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	points := requestTotals(t, reader)
	require.Len(t, points, 1)
	route, _ := points[0].Attributes.Value("http.route")
	assert.Equal(t, "unmatched", route.AsString())
}
