// Package registry keeps the catalog of endpoint definitions. Entries are keyed
// by name and by their (route, method) identity; the first registration of an
// identity always wins.
package registry

import (
	"fmt"
	"strings"

	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/nv0skar/Noisier/pkg/route"
)

// Entry is a registered endpoint with its precomputed route pattern
type Entry struct {
	Name       string
	Definition endpoint.Definition
	Pattern    route.Pattern
}

// Registry is built during setup and read-only afterwards; it is not safe for
// concurrent Put calls.
type Registry struct {
	entries []*Entry
	byName  map[string]*Entry
}

// New creates an empty registry
func New() *Registry {
	return &Registry{byName: make(map[string]*Entry)}
}

// Put registers def under name unless it conflicts with an existing entry by
// case-insensitive name or by route and method. On conflict the existing
// entry is kept; the call fails only when strict is set and the existing entry
// was not generated.
func (r *Registry) Put(name string, def endpoint.Definition, strict bool) error {
	for _, e := range r.entries {
		if strings.EqualFold(e.Name, name) {
			if strict && !e.Definition.Generated {
				return apperrors.NewConfigError(name, fmt.Sprintf("there's an endpoint with the same name '%s'", e.Name))
			}
			return nil
		}
		if e.Definition.SameIdentity(&def) {
			if strict && !e.Definition.Generated {
				return apperrors.NewConfigError(name, fmt.Sprintf(
					"there's an endpoint with exactly the same route and method: %s %s (declared as '%s')",
					def.Method, def.Route, e.Name))
			}
			return nil
		}
	}

	entry := &Entry{
		Name:       name,
		Definition: def,
		Pattern:    route.FromDeclaration(def.Route, def.Method),
	}
	r.entries = append(r.entries, entry)
	r.byName[strings.ToLower(name)] = entry
	return nil
}

// Get returns an entry by name, case-insensitively
func (r *Registry) Get(name string) (*Entry, bool) {
	e, ok := r.byName[strings.ToLower(name)]
	return e, ok
}

// GetByRoute returns the first entry whose declared route string equals route.
// Intended for diagnostics.
func (r *Registry) GetByRoute(route string) (*Entry, bool) {
	for _, e := range r.entries {
		if e.Definition.Route == route {
			return e, true
		}
	}
	return nil, false
}

// FindMatchingRoute resolves a request path and method to the first entry whose
// pattern matches. value holds the numeric trailing segment, if any.
func (r *Registry) FindMatchingRoute(path string, method endpoint.HttpMethod) (e *Entry, value *int64, ok bool) {
	req, v := route.FromRequest(path, method)
	for _, e := range r.entries {
		if e.Pattern.Matches(req) {
			return e, v, true
		}
	}
	return nil, nil, false
}

// All returns entries in registration order
func (r *Registry) All() []*Entry {
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered endpoints
func (r *Registry) Len() int {
	return len(r.entries)
}
