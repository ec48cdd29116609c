package tablespro

import (
	"strconv"
	"strings"
	"sync"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
)

// IDParam is the path placeholder replaced by a record id.
const IDParam = ":id"

// Route is a named URL a table row can navigate to.
type Route struct {
	Name       string
	Pattern    string
	RequiresID bool
}

// URL renders the route, substituting id when the route requires one.
func (r Route) URL(id int64) string {
	if !r.RequiresID {
		return r.Pattern
	}
	return strings.Replace(r.Pattern, IDParam, strconv.FormatInt(id, 10), 1)
}

// Routes is a registry of named routes.
type Routes struct {
	mu     sync.RWMutex
	routes map[string]Route
}

// NewRoutes constructs an empty registry.
func NewRoutes() *Routes {
	return &Routes{routes: make(map[string]Route)}
}

// Register adds or replaces a route. RequiresID is derived from the pattern.
func (r *Routes) Register(name, pattern string) Route {
	route := Route{Name: name, Pattern: pattern, RequiresID: strings.Contains(pattern, IDParam)}
	r.mu.Lock()
	r.routes[name] = route
	r.mu.Unlock()
	return route
}

// Resolve looks a route up by name.
func (r *Routes) Resolve(name string) (Route, error) {
	if r == nil {
		return Route{}, appErrors.Clone(appErrors.ErrRouteNotFound, "no routes registered")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[name]
	if !ok {
		return Route{}, appErrors.Clone(appErrors.ErrRouteNotFound, "route "+strconv.Quote(name)+" is not registered")
	}
	return route, nil
}
