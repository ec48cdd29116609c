// Package htmx reads htmx request headers and writes htmx response directives.
package htmx

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Request headers sent by htmx.
const (
	HeaderRequest     = "HX-Request"
	HeaderTrigger     = "HX-Trigger"
	HeaderTriggerName = "HX-Trigger-Name"
	HeaderTarget      = "HX-Target"
	HeaderCurrentURL  = "HX-Current-URL"
	HeaderBoosted     = "HX-Boosted"
)

// Response headers understood by htmx.
const (
	HeaderRedirect        = "HX-Redirect"
	HeaderRefresh         = "HX-Refresh"
	HeaderRetarget        = "HX-Retarget"
	HeaderReswap          = "HX-Reswap"
	HeaderTriggerResponse = "HX-Trigger"
)

// Details describes an inbound htmx request.
type Details struct {
	Enabled     bool
	Boosted     bool
	Trigger     string
	TriggerName string
	Target      string
	CurrentURL  string
}

// FromRequest extracts htmx details from the request headers.
func FromRequest(r *http.Request) Details {
	if r == nil {
		return Details{}
	}
	h := r.Header
	return Details{
		Enabled:     h.Get(HeaderRequest) == "true",
		Boosted:     h.Get(HeaderBoosted) == "true",
		Trigger:     h.Get(HeaderTrigger),
		TriggerName: h.Get(HeaderTriggerName),
		Target:      h.Get(HeaderTarget),
		CurrentURL:  h.Get(HeaderCurrentURL),
	}
}

// CurrentQuery parses the query string of the page that issued the request.
func (d Details) CurrentQuery() url.Values {
	_, raw, found := strings.Cut(d.CurrentURL, "?")
	if !found {
		return url.Values{}
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}
	}
	return values
}

// CurrentPath returns the absolute path and query of the page that issued the request.
func (d Details) CurrentPath() string {
	u, err := url.Parse(d.CurrentURL)
	if err != nil || u.Path == "" {
		return ""
	}
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

// Redirect instructs htmx to perform a full client-side navigation.
func Redirect(c *gin.Context, location string) {
	c.Header(HeaderRedirect, location)
	c.Status(http.StatusOK)
}

// Refresh instructs htmx to reload the current page.
func Refresh(c *gin.Context) {
	c.Header(HeaderRefresh, "true")
	c.Status(http.StatusOK)
}

// Retarget overrides the element that receives the swapped content.
func Retarget(c *gin.Context, selector string) {
	if selector != "" {
		c.Header(HeaderRetarget, selector)
	}
}

// Trigger emits a client-side event, optionally carrying a detail payload.
func Trigger(c *gin.Context, name string, detail any) error {
	if detail == nil {
		c.Header(HeaderTriggerResponse, name)
		return nil
	}
	payload, err := json.Marshal(map[string]any{name: detail})
	if err != nil {
		return err
	}
	c.Header(HeaderTriggerResponse, string(payload))
	return nil
}
