package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-ops-api/internal/dto"
	"github.com/noah-isme/staff-ops-api/internal/service"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
	"github.com/noah-isme/staff-ops-api/pkg/response"
)

// QrCodeHandler exposes the daily attendance token endpoints.
type QrCodeHandler struct {
	codes *service.QrCodeService
}

// NewQrCodeHandler constructs QrCodeHandler.
func NewQrCodeHandler(codes *service.QrCodeService) *QrCodeHandler {
	return &QrCodeHandler{codes: codes}
}

// Issue godoc
// @Summary Issue QR code
// @Description Create the attendance token for a calendar day
// @Tags QR Codes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.IssueQrCodeRequest true "QR payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /qrcodes [post]
func (h *QrCodeHandler) Issue(c *gin.Context) {
	var req dto.IssueQrCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid qr payload"))
		return
	}

	code, err := h.codes.Issue(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, code)
}

// Current godoc
// @Summary Get QR code for a date
// @Description Return the code and its encoded payload, or an empty body when none exists
// @Tags QR Codes
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /qrcodes/{date} [get]
func (h *QrCodeHandler) Current(c *gin.Context) {
	code, payload, err := h.codes.CurrentFor(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if code == nil {
		response.JSON(c, http.StatusOK, nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"qr_code": code, "payload": string(payload)}, nil)
}

// Revoke godoc
// @Summary Revoke QR code
// @Description Delete the token for a date; attendance logs keep their rows
// @Tags QR Codes
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /qrcodes/{date} [delete]
func (h *QrCodeHandler) Revoke(c *gin.Context) {
	if err := h.codes.Revoke(c.Request.Context(), c.Param("date")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
