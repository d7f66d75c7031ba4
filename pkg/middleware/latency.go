package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CoolCoder0110/Movie-API/pkg/metrics"
)

// RequestLatency is a Gin middleware that observes per-endpoint
// request latency. The route template is used as the label so that
// /api/users/u1 and /api/users/u2 share one series.
func RequestLatency() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RequestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
