package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentalscout/internal/cache"
	"rentalscout/internal/util"
)

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/health [get]
func (h *Handler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.queue != nil {
		resp["pendingEnrichments"] = h.queue.Stats().Pending
	}
	c.JSON(http.StatusOK, resp)
}

// QueueStats godoc
// @Summary Enrichment queue counters
// @Tags admin
// @Produce json
// @Param X-Admin-Key header string true "Admin key"
// @Success 200 {object} enrich.QueueStats
// @Failure 401 {object} map[string]interface{}
// @Router /api/admin/queue [get]
func (h *Handler) QueueStats(c *gin.Context) {
	if h.queue == nil {
		util.ErrorResponse(c, http.StatusNotFound, "Enrichment is disabled", nil)
		return
	}
	c.JSON(http.StatusOK, h.queue.Stats())
}

// RecentRuns godoc
// @Summary Recent enrichment runs
// @Tags admin
// @Produce json
// @Param X-Admin-Key header string true "Admin key"
// @Param limit query int false "Maximum runs to return (default 20)"
// @Success 200 {array} models.EnrichmentReport
// @Failure 401 {object} map[string]interface{}
// @Router /api/admin/runs [get]
func (h *Handler) RecentRuns(c *gin.Context) {
	if h.runs == nil {
		util.ErrorResponse(c, http.StatusNotFound, "Run history requires the SQLite cache", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	runs, err := h.runs.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to load run history", err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

// PurgeCache godoc
// @Summary Delete expired cache entries
// @Tags admin
// @Produce json
// @Param X-Admin-Key header string true "Admin key"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /api/admin/cache/purge [post]
func (h *Handler) PurgeCache(c *gin.Context) {
	purger, ok := h.cache.Store().(cache.Purger)
	if !ok {
		util.ErrorResponse(c, http.StatusNotImplemented, "The configured cache store cannot be purged", nil)
		return
	}

	n, err := purger.PurgeExpired(c.Request.Context())
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to purge cache", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "purged": n})
}
