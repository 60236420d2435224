package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentalscout/internal/airdna"
	"rentalscout/internal/browser"
	"rentalscout/internal/models"
	"rentalscout/internal/util"
	"rentalscout/internal/validation"
)

// FinancialsResponse wraps a single-property projection.
type FinancialsResponse struct {
	Status string            `json:"status"`
	Data   models.Financials `json:"data"`
}

// GetFinancials godoc
// @Summary Rental projection for one property
// @Description Signs into the analytics site on a fresh session and reads net operating income, occupancy and revenue for the address.
// @Tags financials
// @Produce json
// @Param address query string true "Full street address"
// @Param beds query number false "Bedrooms"
// @Param baths query number false "Bathrooms"
// @Success 200 {object} FinancialsResponse
// @Failure 400 {object} map[string]interface{} "Missing or invalid address"
// @Failure 401 {object} map[string]interface{} "Analytics login failed"
// @Failure 404 {object} map[string]interface{} "No projection for this address"
// @Router /api/financials [get]
func (h *Handler) GetFinancials(c *gin.Context) {
	raw := c.Query("address")
	if raw == "" {
		util.ErrorResponse(c, http.StatusBadRequest, "Address is required", nil)
		return
	}
	address, err := validation.ValidateAddress(raw)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	beds, err := optionalFloat(c, "beds")
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	baths, err := optionalFloat(c, "baths")
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if h.financials == nil {
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Financial data is not configured", nil)
		return
	}

	fin, err := h.financials.FetchOne(c.Request.Context(), address, beds, baths)
	if err != nil {
		switch {
		case errors.Is(err, airdna.ErrAuthFailed):
			util.ErrorResponse(c, http.StatusUnauthorized, "Failed to authenticate with the analytics site", err)
		case errors.Is(err, airdna.ErrMetricsMissing):
			util.ErrorResponse(c, http.StatusNotFound, "No financial data found for this address", err)
		case errors.Is(err, browser.ErrBlocked), errors.Is(err, browser.ErrLaunch):
			util.ErrorResponse(c, http.StatusServiceUnavailable, "Financial data is temporarily unavailable", err)
		default:
			util.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch financial data", err)
		}
		return
	}

	c.JSON(http.StatusOK, FinancialsResponse{Status: "success", Data: fin})
}

func optionalFloat(c *gin.Context, param string) (float64, error) {
	raw := c.Query(param)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 50 {
		return 0, errors.New(param + " must be a number between 0 and 50")
	}
	return v, nil
}
