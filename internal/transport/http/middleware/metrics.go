package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/pkg/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records request count and latency labelled by the route template, not the raw path.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
