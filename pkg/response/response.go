package response

import (
	"html/template"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/htmx"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
}

// HTML renders a named template. Fragments returned to htmx are never cached.
func HTML(c *gin.Context, status int, name string, data interface{}) {
	noStore(c)
	c.HTML(status, name, data)
}

var alertTemplate = template.Must(template.New("alert").Parse(
	`<div class="alert alert-danger" role="alert" data-code="{{.Code}}">{{.Message}}</div>`))

// Error sends an error response converting the error to the common structure.
// htmx callers receive an alert fragment retargeted to the messages area.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	if htmx.FromRequest(c.Request).Enabled {
		htmx.Retarget(c, "#messages")
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(appErr.Status)
		_ = alertTemplate.Execute(c.Writer, appErr)
		return
	}
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
