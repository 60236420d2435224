package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rentalscout/internal/browser"
	"rentalscout/internal/cache"
	"rentalscout/internal/enrich"
	"rentalscout/internal/models"
	"rentalscout/internal/scraper"
	"rentalscout/internal/util"
	"rentalscout/internal/validation"
	"rentalscout/internal/zipcode"
)

// ListingsResponse is returned by GET /api/listings.
type ListingsResponse struct {
	Source           string           `json:"source"`
	Timestamp        time.Time        `json:"timestamp"`
	TotalListings    int              `json:"totalListings"`
	Listings         []models.Listing `json:"listings"`
	Status           string           `json:"status"`
	Cached           bool             `json:"cached"`
	EnrichedAt       *time.Time       `json:"enrichedAt,omitempty"`
	EnrichmentQueued bool             `json:"enrichmentQueued"`
	Message          string           `json:"message,omitempty"`
}

// GetListings godoc
// @Summary Search listings by zipcode or city
// @Description Returns listings from the cache or a live search. A live search with results queues background enrichment; poll again later to see cost, rent and ROI figures.
// @Tags listings
// @Produce json
// @Param zip query string false "5-digit zipcode"
// @Param city query string false "City, used with state when zip is omitted"
// @Param state query string false "2-letter state code"
// @Param minPrice query int false "Minimum price in dollars"
// @Param maxPrice query int false "Maximum price in dollars"
// @Param minBeds query int false "Minimum bedrooms"
// @Param maxHOA query int false "Maximum monthly HOA"
// @Param features query string false "Comma-separated keywords, e.g. pool,lake view"
// @Success 200 {object} ListingsResponse
// @Failure 400 {object} map[string]interface{} "Invalid search parameters"
// @Failure 503 {object} map[string]interface{} "Listing site unavailable or blocking"
// @Router /api/listings [get]
func (h *Handler) GetListings(c *gin.Context) {
	zip, ok := h.resolveZip(c, c.Query("zip"), c.Query("city"), c.Query("state"))
	if !ok {
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	searchURL := scraper.BuildSearchURL(h.searchBaseURL, zip, filters)
	key := cache.NormalizeKey(searchURL)

	if set, hit, err := h.cache.Get(c.Request.Context(), key); err != nil {
		log.Printf("⚠️  [listings] cache read failed: %v", err)
	} else if hit {
		log.Printf("✅ [listings] cache hit for %s", key)
		c.JSON(http.StatusOK, newListingsResponse(set, true, false))
		return
	}

	res, err, _ := h.searches.Do(key, func() (interface{}, error) {
		return h.liveSearch(c.Request.Context(), key, searchURL)
	})
	if err != nil {
		status, msg := searchErrorStatus(err)
		util.ErrorResponse(c, status, msg, err)
		return
	}

	r := res.(searchResult)
	c.JSON(http.StatusOK, newListingsResponse(r.set, false, r.queued))
}

type searchResult struct {
	set    *models.SearchResultSet
	queued bool
}

// liveSearch runs outside the request's cancellation so a shared search survives the
// first caller disconnecting.
func (h *Handler) liveSearch(reqCtx context.Context, key, searchURL string) (searchResult, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(reqCtx), h.searchTimeout)
	defer cancel()

	set, err := h.searcher.Search(ctx, searchURL)
	if err != nil {
		return searchResult{}, err
	}

	if err := h.cache.Put(ctx, key, set); err != nil {
		log.Printf("⚠️  [listings] failed to cache result: %v", err)
		return searchResult{set: set}, nil
	}

	queued := false
	if set.TotalListings > 0 && h.queue != nil {
		queued = h.queue.Submit(enrich.Job{Key: key, Set: set.Clone()})
	}
	return searchResult{set: set, queued: queued}, nil
}

// resolveZip validates an explicit zipcode or resolves one from city and state. It
// writes the error response itself and reports whether the handler should continue.
func (h *Handler) resolveZip(c *gin.Context, zip, city, state string) (string, bool) {
	if zip != "" {
		if err := validation.ValidateZipcode(zip); err != nil {
			util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
			return "", false
		}
		return zip, true
	}

	if city == "" || state == "" {
		util.ErrorResponse(c, http.StatusBadRequest, "Either zipcode or city and state are required", nil)
		return "", false
	}
	city, err := validation.ValidateCity(city)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return "", false
	}
	state, err = validation.ValidateState(state)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return "", false
	}

	if h.resolver == nil {
		util.ErrorResponse(c, http.StatusBadRequest, "City search is not configured; please enter a zipcode", nil)
		return "", false
	}
	zip, err = h.resolver.Resolve(c.Request.Context(), city, state)
	if err != nil {
		if errors.Is(err, zipcode.ErrUnresolved) {
			util.ErrorResponse(c, http.StatusBadRequest,
				"Could not determine a valid zipcode for the specified city and state. Please try a different city or enter a zipcode directly.", err)
			return "", false
		}
		util.ErrorResponse(c, http.StatusInternalServerError,
			"Failed to get zipcode. Please try again or enter a zipcode directly.", err)
		return "", false
	}
	return zip, true
}

func parseFilters(c *gin.Context) (scraper.Filters, error) {
	var f scraper.Filters
	ints := []struct {
		param string
		dst   *int
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
		{"minBeds", &f.MinBeds},
		{"maxHOA", &f.MaxHOA},
	}
	for _, p := range ints {
		raw := c.Query(p.param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, fmt.Errorf("%s must be a non-negative whole number", p.param)
		}
		*p.dst = n
	}
	if err := validation.ValidatePriceRange(f.MinPrice, f.MaxPrice); err != nil {
		return f, err
	}

	features, err := validation.ValidateFeatures(c.Query("features"))
	if err != nil {
		return f, err
	}
	f.Features = features
	return f, nil
}

func searchErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, browser.ErrBlocked):
		return http.StatusServiceUnavailable, "The listing site is blocking automated access right now. Please try again later."
	case errors.Is(err, browser.ErrLaunch):
		return http.StatusServiceUnavailable, "Search is temporarily unavailable"
	case errors.Is(err, scraper.ErrResultsTimeout):
		return http.StatusGatewayTimeout, "The listing site did not return results in time"
	default:
		return http.StatusInternalServerError, "Failed to fetch listings"
	}
}

func newListingsResponse(set *models.SearchResultSet, cached, queued bool) ListingsResponse {
	listings := set.Listings
	if listings == nil {
		listings = []models.Listing{}
	}
	return ListingsResponse{
		Source:           set.Source,
		Timestamp:        set.Timestamp,
		TotalListings:    set.TotalListings,
		Listings:         listings,
		Status:           "success",
		Cached:           cached,
		EnrichedAt:       set.EnrichedAt,
		EnrichmentQueued: queued,
		Message:          set.Message,
	}
}
