package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-ops-api/internal/dto"
	"github.com/noah-isme/staff-ops-api/internal/models"
	"github.com/noah-isme/staff-ops-api/internal/service"
	appErrors "github.com/noah-isme/staff-ops-api/pkg/errors"
	"github.com/noah-isme/staff-ops-api/pkg/response"
)

// ProfileHandler exposes the admin account management endpoints.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// List godoc
// @Summary List profiles
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name or email"
// @Param role query string false "admin or user"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/profiles [get]
func (h *ProfileHandler) List(c *gin.Context) {
	var filter models.ProfileFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if raw := c.Query("role"); raw != "" {
		role := models.Role(raw)
		if role.Valid() {
			filter.Role = &role
		}
	}
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.Active = &v
	}
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	rows, total, err := h.profiles.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, &models.Pagination{
		Page: filter.Page, PageSize: filter.PageSize, TotalCount: total,
	})
}

// Get godoc
// @Summary Get profile
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/profiles/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Create godoc
// @Summary Create profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateProfileRequest true "Profile payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/profiles [post]
func (h *ProfileHandler) Create(c *gin.Context) {
	var req dto.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.profiles.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// SetActive godoc
// @Summary Activate or deactivate profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Param payload body dto.SetProfileActiveRequest true "Activation payload"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /admin/profiles/{id}/active [put]
func (h *ProfileHandler) SetActive(c *gin.Context) {
	var req dto.SetProfileActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activation payload"))
		return
	}

	if err := h.profiles.SetActive(c.Request.Context(), c.Param("id"), req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete profile
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /admin/profiles/{id} [delete]
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.profiles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
