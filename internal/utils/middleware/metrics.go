package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ariachat/server/internal/utils/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics observes every request under its route template. A nil m
// yields a pass-through handler.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()
		began := time.Now()

		c.Next()

		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(began))
	}
}
