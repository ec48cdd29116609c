package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, inbound string) (header, seen string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(Header, inbound)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header().Get(Header), seen
}

func TestMiddlewareReusesValidID(t *testing.T) {
	header, seen := serve(t, "edge-42.a_b")
	assert.Equal(t, "edge-42.a_b", header)
	assert.Equal(t, header, seen)
}

func TestMiddlewareReplacesInvalidID(t *testing.T) {
	for _, inbound := range []string{"", "bad id\nforged=1", strings.Repeat("x", 65)} {
		header, seen := serve(t, inbound)
		_, err := uuid.Parse(header)
		require.NoError(t, err, inbound)
		assert.Equal(t, header, seen)
	}
}
