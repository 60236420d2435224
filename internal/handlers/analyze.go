package handlers

import (
	"errors"
	"log"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentalscout/internal/finance"
	"rentalscout/internal/models"
	"rentalscout/internal/util"
)

const maxAnalyzeListings = 200

// AnalyzeSummary aggregates an analyze request.
type AnalyzeSummary struct {
	Analyzed    int      `json:"analyzed"`
	Skipped     int      `json:"skipped"`
	WithROI     int      `json:"withRoi"`
	AverageROI  *float64 `json:"averageRoi,omitempty"`
	BestAddress string   `json:"bestAddress,omitempty"`
	BestROI     *float64 `json:"bestRoi,omitempty"`
}

// AnalyzeResponse is returned by POST /api/analyze.
type AnalyzeResponse struct {
	Status        string           `json:"status"`
	TotalListings int              `json:"totalListings"`
	Listings      []models.Listing `json:"listings"`
	Summary       AnalyzeSummary   `json:"summary"`
}

// AnalyzeListings godoc
// @Summary Estimate costs and returns for caller-supplied listings
// @Description Adds a monthly cost estimate to each listing and recomputes cash flow and ROI from any rent already present. Listings without an address are skipped.
// @Tags listings
// @Accept json
// @Produce json
// @Param listings body []models.Listing true "Listings to analyze"
// @Success 200 {object} AnalyzeResponse
// @Failure 400 {object} map[string]interface{} "Invalid body"
// @Router /api/analyze [post]
func (h *Handler) AnalyzeListings(c *gin.Context) {
	var in []models.Listing
	if err := c.ShouldBindJSON(&in); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, "Body must be a JSON array of listings", err)
		return
	}
	if len(in) > maxAnalyzeListings {
		util.ErrorResponse(c, http.StatusBadRequest, "Too many listings in one request", nil)
		return
	}

	out := make([]models.Listing, 0, len(in))
	var summary AnalyzeSummary
	var roiTotal float64

	for _, l := range in {
		if !l.Valid() {
			summary.Skipped++
			continue
		}

		cost, err := h.estimator.Estimate(c.Request.Context(), l)
		switch {
		case err == nil:
			l.ApplyCost(cost)
		case errors.Is(err, finance.ErrNoPrice):
			l.Recompute()
		default:
			log.Printf("⚠️  [analyze] cost estimate for %s: %v", l.Address, err)
			l.Recompute()
		}

		summary.Analyzed++
		if l.ROI != nil {
			summary.WithROI++
			roiTotal += *l.ROI
			if summary.BestROI == nil || *l.ROI > *summary.BestROI {
				best := *l.ROI
				summary.BestROI = &best
				summary.BestAddress = l.Address
			}
		}
		out = append(out, l)
	}

	if summary.WithROI > 0 {
		avg := math.Round(roiTotal/float64(summary.WithROI)*100) / 100
		summary.AverageROI = &avg
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Status:        "success",
		TotalListings: len(out),
		Listings:      out,
		Summary:       summary,
	})
}
