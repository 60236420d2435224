package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rentalscout/internal/middleware"
)

// RouteOptions configures route-level protection.
type RouteOptions struct {
	AdminKeyHash  string
	Limiter       *middleware.RateLimiter // nil disables rate limiting
	PurgeCooldown time.Duration
}

// RegisterRoutes mounts the API on r.
func (h *Handler) RegisterRoutes(r gin.IRouter, opts RouteOptions) {
	if opts.PurgeCooldown <= 0 {
		opts.PurgeCooldown = time.Minute
	}

	var limited []gin.HandlerFunc
	if opts.Limiter != nil {
		limited = append(limited, middleware.RateLimitMiddleware(opts.Limiter))
	}

	// Legacy path still used by existing clients.
	r.Group("/listings", limited...).GET("/financials", h.GetFinancials)

	api := r.Group("/api")
	api.GET("/health", h.Health)

	search := api.Group("", limited...)
	{
		search.GET("/listings", h.GetListings)
		search.GET("/financials", h.GetFinancials)
		search.POST("/zipcode", h.ResolveZipcode)
		search.POST("/analyze", h.AnalyzeListings)
	}

	admin := api.Group("/admin", middleware.AdminKeyMiddleware(opts.AdminKeyHash))
	{
		admin.GET("/queue", h.QueueStats)
		admin.GET("/runs", h.RecentRuns)
		admin.POST("/cache/purge", middleware.CooldownMiddleware(opts.PurgeCooldown), h.PurgeCache)
	}
}

// NoRoute answers unknown API paths with the JSON envelope.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"status":  http.StatusNotFound,
		"error":   http.StatusText(http.StatusNotFound),
		"message": "Endpoint not found",
	})
}
