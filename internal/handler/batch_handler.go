package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/booking-api/internal/dto"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/service"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/response"
)

// BatchHandler exposes group-batch endpoints.
type BatchHandler struct {
	batches *service.BatchService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewBatchHandler constructs BatchHandler.
func NewBatchHandler(batches *service.BatchService, exports *service.ExportService, metrics *service.MetricsService) *BatchHandler {
	return &BatchHandler{batches: batches, exports: exports, metrics: metrics}
}

// Preview godoc
// @Summary Preview the sessions a recurring pattern expands to
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body dto.PreviewBatchRequest true "Recurring pattern"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /batches/preview [post]
func (h *BatchHandler) Preview(c *gin.Context) {
	var req dto.PreviewBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	res, err := h.batches.Preview(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Create godoc
// @Summary Create a group batch with its generated sessions
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body dto.CreateBatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	batch, sessions, err := h.batches.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordSessionsGenerated(len(sessions))
	response.Created(c, gin.H{"batch": batch, "sessions": sessions})
}

// Get godoc
// @Summary Get a batch with its sessions
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	batch, sessions, err := h.batches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"batch": batch, "sessions": sessions}, nil)
}

// List godoc
// @Summary List batches
// @Tags Batches
// @Produce json
// @Param tutorId query string false "Filter by tutor"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	var filter models.BatchFilter
	filter.TutorID = c.Query("tutorId")
	filter.Status = models.BatchStatus(strings.ToUpper(c.Query("status")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	batches, pagination, err := h.batches.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, pagination)
}

// Enroll godoc
// @Summary Enroll the authenticated student in a batch
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /batches/{id}/enroll [post]
func (h *BatchHandler) Enroll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, err := h.batches.Enroll(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// SessionJoinWindow godoc
// @Summary Evaluate the join window for a batch session
// @Tags Batches
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /batch-sessions/{sessionId}/join-window [get]
func (h *BatchHandler) SessionJoinWindow(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.batches.SessionJoinWindow(c.Request.Context(), claims.UserID, c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordJoinCheck(joinOutcome(res))
	response.JSON(c, http.StatusOK, res, nil)
}

// ExportCSV godoc
// @Summary Export a batch schedule as CSV
// @Tags Batches
// @Produce text/csv
// @Param id path string true "Batch ID"
// @Success 200 {file} file
// @Router /batches/{id}/schedule.csv [get]
func (h *BatchHandler) ExportCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payload, filename, err := h.exports.ScheduleCSV(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export a batch schedule as PDF
// @Tags Batches
// @Produce application/pdf
// @Param id path string true "Batch ID"
// @Success 200 {file} file
// @Router /batches/{id}/schedule.pdf [get]
func (h *BatchHandler) ExportPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payload, filename, err := h.exports.SchedulePDF(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", payload)
}
