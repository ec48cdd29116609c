package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tables-pro/pkg/htmx"
)

var allowedHeaders = strings.Join([]string{
	"Content-Type",
	"X-Requested-With",
	"X-Request-ID",
	htmx.HeaderRequest,
	htmx.HeaderTrigger,
	htmx.HeaderTriggerName,
	htmx.HeaderTarget,
	htmx.HeaderCurrentURL,
	htmx.HeaderBoosted,
}, ", ")

var exposedHeaders = strings.Join([]string{
	htmx.HeaderRedirect,
	htmx.HeaderRefresh,
	htmx.HeaderRetarget,
	htmx.HeaderReswap,
	htmx.HeaderTriggerResponse,
}, ", ")

// New returns a CORS middleware for embedding table fragments cross-origin.
// An empty origin list allows every origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originSet[strings.TrimRight(origin, "/")]; allowAll || ok {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			}
		} else if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		c.Writer.Header().Set("Access-Control-Expose-Headers", exposedHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
