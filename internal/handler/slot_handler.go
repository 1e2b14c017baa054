package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/booking-api/internal/dto"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/service"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/response"
)

// SlotHandler exposes tutor slot endpoints.
type SlotHandler struct {
	slots   *service.SlotService
	metrics *service.MetricsService
}

// NewSlotHandler constructs SlotHandler.
func NewSlotHandler(slots *service.SlotService, metrics *service.MetricsService) *SlotHandler {
	return &SlotHandler{slots: slots, metrics: metrics}
}

// Build godoc
// @Summary Derive a slot interval from date, time and type
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body dto.BuildSlotRequest true "Slot builder input"
// @Success 200 {object} response.Envelope
// @Router /slots/build [post]
func (h *SlotHandler) Build(c *gin.Context) {
	var req dto.BuildSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	res, err := h.slots.Build(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Submit godoc
// @Summary Submit a tutor's pending slot batch
// @Tags Slots
// @Accept json
// @Produce json
// @Param id path string true "Tutor ID"
// @Param payload body dto.SubmitSlotsRequest true "Pending slots"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tutors/{id}/slots [post]
func (h *SlotHandler) Submit(c *gin.Context) {
	var req dto.SubmitSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slots, err := h.slots.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordSlotsPublished(len(slots))
	response.Created(c, slots)
}

// List godoc
// @Summary List slots
// @Tags Slots
// @Produce json
// @Param tutorId query string false "Filter by tutor"
// @Param slotType query string false "Filter by slot type"
// @Param status query string false "Filter by status"
// @Param from query string false "Start of time range (RFC 3339)"
// @Param to query string false "End of time range (RFC 3339)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	var filter models.SlotFilter
	filter.TutorID = c.Query("tutorId")
	filter.SlotType = c.Query("slotType")
	filter.Status = models.SlotStatus(strings.ToUpper(c.Query("status")))
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.To = &to
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	slots, pagination, err := h.slots.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, pagination)
}

// Delete godoc
// @Summary Delete an open slot
// @Tags Slots
// @Param id path string true "Tutor ID"
// @Param slotId path string true "Slot ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /tutors/{id}/slots/{slotId} [delete]
func (h *SlotHandler) Delete(c *gin.Context) {
	if err := h.slots.Delete(c.Request.Context(), c.Param("id"), c.Param("slotId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
