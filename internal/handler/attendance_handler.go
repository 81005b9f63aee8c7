package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-ops-api/internal/dto"
	"github.com/noah-isme/staff-ops-api/internal/models"
	"github.com/noah-isme/staff-ops-api/internal/service"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
	"github.com/noah-isme/staff-ops-api/pkg/response"
)

// AttendanceHandler exposes scan recording and log listing endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, metrics: metrics}
}

// RecordScan godoc
// @Summary Record attendance scan
// @Description Consume a scanned payload and append one attendance log row
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecordScanRequest true "Scan payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /attendance/scan [post]
func (h *AttendanceHandler) RecordScan(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RecordScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scan payload"))
		return
	}

	log, err := h.attendance.RecordScan(c.Request.Context(), claims.UserID, req.Payload, models.ScanDirection(req.Direction))
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrScanInProgress.Code {
			h.metrics.RecordScanRejection("in_progress")
		}
		response.Error(c, err)
		return
	}
	h.metrics.RecordScan(string(log.Type))
	response.Created(c, log)
}

// List godoc
// @Summary List attendance logs
// @Description Staff see their own rows; admins may filter by user
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Filter by user (admin only)"
// @Param date query string false "Filter by QR date"
// @Param type query string false "check-in or check-out"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	filter := h.filterFromQuery(c)
	rows, total, err := h.attendance.List(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, &models.Pagination{
		Page: filter.Page, PageSize: filter.PageSize, TotalCount: total,
	})
}

// Export godoc
// @Summary Export attendance logs
// @Description Render the filtered listing as CSV or PDF
// @Tags Attendance
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string true "csv or pdf"
// @Param date query string false "Filter by QR date"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	filter := h.filterFromQuery(c)
	format := c.DefaultQuery("format", "csv")

	out, contentType, err := h.attendance.Export(c.Request.Context(), filter, format, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.%s", time.Now().Format("20060102-150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, out)
}

func (h *AttendanceHandler) filterFromQuery(c *gin.Context) models.AttendanceFilter {
	var filter models.AttendanceFilter
	filter.UserID = c.Query("userId")
	filter.QrDate = c.Query("date")
	if raw := c.Query("type"); raw != "" {
		direction := models.ScanDirection(raw)
		if direction.Valid() {
			filter.Type = &direction
		}
	}
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortOrder = c.Query("order")
	return filter
}
