package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-ops-api/internal/dto"
	"github.com/noah-isme/staff-ops-api/internal/models"
	"github.com/noah-isme/staff-ops-api/internal/service"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
	"github.com/noah-isme/staff-ops-api/pkg/response"
)

// LeaveHandler exposes the leave request lifecycle endpoints.
type LeaveHandler struct {
	leaves *service.LeaveService
}

// NewLeaveHandler constructs LeaveHandler.
func NewLeaveHandler(leaves *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaves: leaves}
}

// Submit godoc
// @Summary Submit leave request
// @Description File the caller's own leave request; it starts pending
// @Tags Leave
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SubmitLeaveRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leaves [post]
func (h *LeaveHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leave payload"))
		return
	}

	request, err := h.leaves.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// SubmitAsAdmin godoc
// @Summary Create admin leave override
// @Description Create a pre-approved schedule override naming a substitute
// @Tags Leave
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AdminLeaveRequest true "Override payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/leaves [post]
func (h *LeaveHandler) SubmitAsAdmin(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AdminLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leave payload"))
		return
	}

	request, err := h.leaves.SubmitAsAdmin(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Decide godoc
// @Summary Decide leave request
// @Description Approve or reject a pending request; decisions are final
// @Tags Leave
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave request ID"
// @Param payload body dto.DecideLeaveRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/leaves/{id}/decision [put]
func (h *LeaveHandler) Decide(c *gin.Context) {
	var req dto.DecideLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	request, err := h.leaves.Decide(c.Request.Context(), c.Param("id"), models.LeaveOutcome(req.Outcome))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// ListMine godoc
// @Summary List own leave requests
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /leaves [get]
func (h *LeaveHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, size := pageParams(c)
	rows, total, err := h.leaves.MineForUser(c.Request.Context(), claims.UserID, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total})
}

// ListForAdmin godoc
// @Summary List leave requests
// @Description Admin listing; status=pending narrows to undecided requests
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending to list undecided only"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/leaves [get]
func (h *LeaveHandler) ListForAdmin(c *gin.Context) {
	page, size := pageParams(c)

	var (
		rows  []models.LeaveRequestDetail
		total int
		err   error
	)
	if c.Query("status") == string(models.LeaveStatusPending) {
		rows, total, err = h.leaves.PendingForAdmin(c.Request.Context(), page, size)
	} else {
		rows, total, err = h.leaves.AllForAdmin(c.Request.Context(), page, size)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total})
}
