package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tables-pro/internal/service"
	"github.com/noah-isme/tables-pro/pkg/htmx"
)

// Metrics returns middleware that captures request metrics using the provided service.
// htmx partial updates are recorded under an "HX " method prefix so full page loads
// and fragment swaps of the same route can be told apart.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if _, ok := skipped[path]; ok {
			return
		}
		method := c.Request.Method
		if htmx.FromRequest(c.Request).Enabled {
			method = "HX " + method
		}
		metricsSvc.ObserveHTTPRequest(method, path, c.Writer.Status(), duration)
	}
}
