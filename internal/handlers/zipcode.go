package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentalscout/internal/scraper"
	"rentalscout/internal/util"
)

// ZipcodeRequest is the body of POST /api/zipcode.
type ZipcodeRequest struct {
	City  string `json:"city" binding:"required"`
	State string `json:"state" binding:"required"`
}

// ZipcodeResponse carries the resolved zipcode and its bare search URL.
type ZipcodeResponse struct {
	Zipcode   string `json:"zipcode"`
	SearchURL string `json:"searchUrl"`
	Message   string `json:"message"`
}

// ResolveZipcode godoc
// @Summary Resolve a city to its main zipcode
// @Tags listings
// @Accept json
// @Produce json
// @Param request body ZipcodeRequest true "City and 2-letter state"
// @Success 200 {object} ZipcodeResponse
// @Failure 400 {object} map[string]interface{} "Invalid city/state or no zipcode found"
// @Router /api/zipcode [post]
func (h *Handler) ResolveZipcode(c *gin.Context) {
	var req ZipcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, "City and state are required", err)
		return
	}

	zip, ok := h.resolveZip(c, "", req.City, req.State)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ZipcodeResponse{
		Zipcode:   zip,
		SearchURL: scraper.BuildSearchURL(h.searchBaseURL, zip, scraper.Filters{}),
		Message:   fmt.Sprintf("Found zipcode %s for %s, %s", zip, req.City, req.State),
	})
}
