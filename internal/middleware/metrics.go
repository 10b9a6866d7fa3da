package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scholarhub/college-review-api/internal/service"
)

// Metrics records one duration observation per request, labeled by route
// template so ranking detail requests aggregate under /rankings/:id instead
// of one series per ranking. A nil service disables observation.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
