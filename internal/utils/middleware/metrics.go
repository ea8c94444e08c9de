package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkgate/server/internal/utils/metrics"
)

// Metrics returns a middleware that records HTTP metrics.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath() // Use route pattern, not actual path
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(method, path, c.Writer.Status(), time.Since(start))
	}
}
