package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcast/roadcast/internal/location"
	"github.com/roadcast/roadcast/internal/observability"
	"github.com/roadcast/roadcast/internal/travel"
	"github.com/roadcast/roadcast/internal/worker"
)

// mockEngine is a mock travel engine for testing.
type mockEngine struct {
	mu        sync.Mutex
	locations []location.Location
	fail      map[string]bool
	refreshed map[string]int
	purges    int
	cleared   int
}

func newMockEngine(names ...string) *mockEngine {
	m := &mockEngine{
		fail:      make(map[string]bool),
		refreshed: make(map[string]int),
	}
	for _, name := range names {
		m.locations = append(m.locations, location.Location{Name: name})
	}
	return m
}

func (m *mockEngine) Locations() []location.Location {
	return m.locations
}

func (m *mockEngine) RefreshComprehensive(_ context.Context, name string) (*travel.Comprehensive, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed[name]++
	if m.fail[name] {
		return nil, false
	}
	return &travel.Comprehensive{Location: location.Location{Name: name}}, true
}

func (m *mockEngine) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purges++
	return 2
}

func (m *mockEngine) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
}

func (m *mockEngine) refreshCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshed[name]
}

// mockPublisher records published batches.
type mockPublisher struct {
	mu      sync.Mutex
	batches [][]*travel.Comprehensive
	err     error
}

func (p *mockPublisher) Publish(_ context.Context, results []*travel.Comprehensive) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, results)
	return p.err
}

func TestDefaultWarmerConfig(t *testing.T) {
	cfg := worker.DefaultWarmerConfig()

	assert.Equal(t, 5*time.Minute, cfg.Interval)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Locations)
}

func TestRefreshJob_Run_AllLocations(t *testing.T) {
	engine := newMockEngine("Colombo", "Kandy", "Galle", "Jaffna")
	publisher := &mockPublisher{}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    worker.WarmerConfig{Concurrency: 2},
		Engine:    engine,
		Publisher: publisher,
		Logger:    zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 4, result.TotalLocations)
	assert.Equal(t, 4, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.Purged)
	assert.Equal(t, "complete", result.Outcome())
	assert.NoError(t, result.PublishErr)

	for _, name := range []string{"Colombo", "Kandy", "Galle", "Jaffna"} {
		assert.Equal(t, 1, engine.refreshCount(name), name)
	}

	require.Len(t, publisher.batches, 1)
	assert.Len(t, publisher.batches[0], 4)
}

func TestRefreshJob_Run_FailuresAreIsolated(t *testing.T) {
	engine := newMockEngine("Colombo", "Kandy", "Galle")
	engine.fail["Kandy"] = true
	publisher := &mockPublisher{}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Engine:    engine,
		Publisher: publisher,
		Logger:    zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"Kandy"}, result.FailedNames)
	assert.Equal(t, "partial", result.Outcome())

	require.Len(t, publisher.batches, 1)
	assert.Len(t, publisher.batches[0], 2)
}

func TestRefreshJob_Run_ConfiguredLocationsOnly(t *testing.T) {
	engine := newMockEngine("Colombo", "Kandy", "Galle")

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.WarmerConfig{Locations: []string{"Galle"}},
		Engine: engine,
		Logger: zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.TotalLocations)
	assert.Equal(t, 1, engine.refreshCount("Galle"))
	assert.Equal(t, 0, engine.refreshCount("Colombo"))
}

func TestRefreshJob_Run_NothingPublishedWhenAllFail(t *testing.T) {
	engine := newMockEngine("Colombo")
	engine.fail["Colombo"] = true
	publisher := &mockPublisher{}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Engine:    engine,
		Publisher: publisher,
		Logger:    zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, "failed", result.Outcome())
	assert.Empty(t, publisher.batches)
}

func TestRefreshJob_Run_PublishErrorRecorded(t *testing.T) {
	engine := newMockEngine("Colombo")
	publisher := &mockPublisher{err: errors.New("broker down")}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Engine:    engine,
		Publisher: publisher,
		Logger:    zerolog.Nop(),
	})

	result := job.Run(context.Background())

	require.Error(t, result.PublishErr)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, int64(1), job.Stats().PublishFailures)
}

func TestRefreshJob_Run_CancelledContext(t *testing.T) {
	engine := newMockEngine("Colombo", "Kandy")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Engine: engine,
		Logger: zerolog.Nop(),
	})

	result := job.Run(ctx)

	assert.Equal(t, 2, result.TotalLocations)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 2, result.Failed)
}

func TestRefreshJob_StatsAndMetrics(t *testing.T) {
	engine := newMockEngine("Colombo", "Kandy")
	engine.fail["Kandy"] = true
	clock := clockwork.NewFakeClock()
	metrics := observability.NewMetricsForTesting()

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Engine:  engine,
		Metrics: metrics,
		Clock:   clock,
		Logger:  zerolog.Nop(),
	})

	job.Run(context.Background())
	job.Run(context.Background())

	stats := job.Stats()
	assert.Equal(t, int64(2), stats.TotalSweeps)
	assert.Equal(t, int64(2), stats.SuccessfulRefreshes)
	assert.Equal(t, int64(2), stats.FailedRefreshes)
	assert.Equal(t, clock.Now(), stats.LastSweepAt)

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.WarmerSweeps.WithLabelValues("partial")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.WarmerLocations.WithLabelValues("success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.WarmerLocations.WithLabelValues("error")), 0)
}
