package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-ops-api/internal/service"
)

// Metrics times every request and records it against the route template,
// falling back to the raw path for unmatched requests.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
