// Package handler provides HTTP handlers for the roadcast API.
package handler

import (
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker/v2"

	"github.com/roadcast/roadcast/internal/api/models"
	"github.com/roadcast/roadcast/internal/api/response"
	"github.com/roadcast/roadcast/internal/cache"
	"github.com/roadcast/roadcast/internal/provider/resilience"
)

// ProviderHealthSource reports upstream provider health.
// *resilience.Registry implements it.
type ProviderHealthSource interface {
	GetAllHealth() []*resilience.ProviderHealth
	Status() resilience.Status
}

// CacheStatsSource reports cache occupancy.
type CacheStatsSource interface {
	CacheStats() cache.Stats
}

// OpsConfig holds dependencies for OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	Providers ProviderHealthSource
	Cache     CacheStatsSource
	Clock     clockwork.Clock
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	providers ProviderHealthSource
	cache     CacheStatsSource
	clock     clockwork.Clock
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		providers: cfg.Providers,
		cache:     cfg.Cache,
		clock:     clock,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.clock.Now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It fails with 503 while any
// provider circuit is open and reports DEGRADED while one is half-open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.overall()

	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, models.Health{
		Status: status,
		Time:   models.Timestamp(h.clock.Now()),
	})
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     h.overall(),
		Time:       models.Timestamp(h.clock.Now()),
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	if h.cache != nil {
		stats := h.cache.CacheStats()
		detail := fmt.Sprintf("%d entries", stats.Size)
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "weather-cache",
			Status: models.HealthStatusOK,
			Detail: &detail,
		})
	}

	if h.providers != nil {
		for _, ph := range h.providers.GetAllHealth() {
			status.Providers = append(status.Providers, providerStatus(ph))
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) overall() models.HealthStatus {
	if h.providers == nil {
		return models.HealthStatusOK
	}
	switch h.providers.Status() {
	case resilience.StatusUnhealthy:
		return models.HealthStatusFail
	case resilience.StatusDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            ph.Name,
		Status:              models.HealthStatusOK,
		CircuitState:        ph.CircuitState.String(),
		ConsecutiveFailures: ph.Counts.ConsecutiveFailures,
		LastSuccessAt:       models.TimestampPtr(ph.LastSuccessAt),
		LastFailureAt:       models.TimestampPtr(ph.LastFailureAt),
	}

	switch ph.CircuitState {
	case gobreaker.StateOpen:
		ps.Status = models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		ps.Status = models.HealthStatusDegraded
	}

	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}
