package tables

import "github.com/noah-isme/tables-pro/pkg/tablespro"

// Registry holds the demo views in menu order.
type Registry struct {
	views       []tablespro.Controller
	bySlug      map[string]tablespro.Controller
	interactive map[string]bool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bySlug:      make(map[string]tablespro.Controller),
		interactive: make(map[string]bool),
	}
}

// Add appends a view. Interactive views accept layout overrides from the settings form.
// A view with a slug already registered replaces the earlier one in place.
func (r *Registry) Add(view tablespro.Controller, interactive bool) {
	slug := view.Name()
	if _, exists := r.bySlug[slug]; exists {
		for i, v := range r.views {
			if v.Name() == slug {
				r.views[i] = view
			}
		}
	} else {
		r.views = append(r.views, view)
	}
	r.bySlug[slug] = view
	r.interactive[slug] = interactive
}

// Lookup returns the view registered under slug.
func (r *Registry) Lookup(slug string) (tablespro.Controller, bool) {
	v, ok := r.bySlug[slug]
	return v, ok
}

// Interactive reports whether the view accepts layout overrides.
func (r *Registry) Interactive(slug string) bool {
	return r.interactive[slug]
}

// All returns the views in menu order.
func (r *Registry) All() []tablespro.Controller {
	return append([]tablespro.Controller(nil), r.views...)
}

// First returns the first registered view, or nil when the registry is empty.
func (r *Registry) First() tablespro.Controller {
	if len(r.views) == 0 {
		return nil
	}
	return r.views[0]
}
