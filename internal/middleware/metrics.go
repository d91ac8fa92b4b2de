package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/tasklane/internal/observ"
)

// unmatchedRoute labels requests that hit no route, so scanners probing
// random paths cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = unmatchedRoute
		}
		method := c.Request.Method
		statusCode := c.Writer.Status()
		status := strconv.Itoa(statusCode)

		observ.HTTPRequestsTotal.WithLabelValues(endpoint, status, method).Inc()
		observ.HTTPRequestDuration.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())
		if statusCode >= 400 {
			observ.HTTPErrorsTotal.WithLabelValues(endpoint, status, method).Inc()
		}
	}
}
