package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-ops-api/internal/middleware"
	"github.com/noah-isme/staff-ops-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func pageParams(c *gin.Context) (int, int) {
	page := 1
	size := 20
	if v, ok := parseIntQuery(c, "page"); ok {
		page = v
	}
	if v, ok := parseIntQuery(c, "limit"); ok {
		size = v
	}
	return page, size
}

func parseIntQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}
