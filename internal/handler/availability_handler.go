package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/booking-api/internal/dto"
	"github.com/tutorhive/booking-api/internal/service"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/response"
)

// AvailabilityHandler exposes tutor availability endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Get godoc
// @Summary Get tutor availability
// @Tags Availability
// @Produce json
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/availability [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	res, err := h.availability.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Update godoc
// @Summary Replace tutor availability
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Tutor ID"
// @Param payload body dto.UpdateAvailabilityRequest true "Availability dates"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/availability [put]
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var req dto.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	res, err := h.availability.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Toggle godoc
// @Summary Toggle a single availability date
// @Tags Availability
// @Produce json
// @Param id path string true "Tutor ID"
// @Param date path string true "Date in YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/availability/{date} [post]
func (h *AvailabilityHandler) Toggle(c *gin.Context) {
	res, err := h.availability.Toggle(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// SelectMonth godoc
// @Summary Bulk-select a month minus one weekday
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Tutor ID"
// @Param payload body dto.MonthSelectRequest true "Month selection"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/availability/month [post]
func (h *AvailabilityHandler) SelectMonth(c *gin.Context) {
	var req dto.MonthSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	res, err := h.availability.SelectMonth(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Clear godoc
// @Summary Clear tutor availability
// @Tags Availability
// @Param id path string true "Tutor ID"
// @Success 204
// @Router /tutors/{id}/availability [delete]
func (h *AvailabilityHandler) Clear(c *gin.Context) {
	if err := h.availability.Clear(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
