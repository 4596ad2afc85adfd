package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/roadcast/roadcast/internal/api/middleware"
	"github.com/roadcast/roadcast/internal/api/response"
	"github.com/roadcast/roadcast/internal/cache"
)

// CacheAdmin is the cache control surface of travel.Service.
type CacheAdmin interface {
	CacheStats() cache.Stats
	ClearCache()
}

// AdminHandler handles the authenticated admin endpoints.
type AdminHandler struct {
	cache  CacheAdmin
	logger zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cache CacheAdmin, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{cache: cache, logger: logger}
}

// GetCache handles GET /v1/admin/cache - cache size and keys, including
// entries that have expired but not yet been purged.
func (h *AdminHandler) GetCache(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.cache.CacheStats())
}

// ClearCache handles DELETE /v1/admin/cache.
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	before := h.cache.CacheStats().Size
	h.cache.ClearCache()

	h.logger.Info().
		Str("request_id", middleware.GetRequestID(r.Context())).
		Str("subject", middleware.GetSubject(r.Context())).
		Int("entries", before).
		Msg("admin cleared weather cache")

	response.NoContent(w, r)
}
