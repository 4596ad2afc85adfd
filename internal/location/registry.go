// Package location provides the static catalog of named places the engine
// can report weather for.
package location

import (
	"strings"
)

// Location is a named point with administrative metadata.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	District  string  `json:"district"`
	Province  string  `json:"province"`
}

// Registry maps place names to locations. It is read-only after construction
// and safe for concurrent use.
type Registry struct {
	ordered []Location
	byName  map[string]Location
}

// NewRegistry creates a registry from the given locations. Later duplicates of
// a name (case-insensitive) are ignored.
func NewRegistry(locations []Location) *Registry {
	r := &Registry{
		ordered: make([]Location, 0, len(locations)),
		byName:  make(map[string]Location, len(locations)),
	}

	for _, loc := range locations {
		key := normalize(loc.Name)
		if key == "" {
			continue
		}
		if _, exists := r.byName[key]; exists {
			continue
		}
		r.byName[key] = loc
		r.ordered = append(r.ordered, loc)
	}

	return r
}

// Resolve looks up a location by name. Matching is exact but case-insensitive.
// Unknown names return false.
func (r *Registry) Resolve(name string) (Location, bool) {
	loc, ok := r.byName[normalize(name)]
	return loc, ok
}

// List returns all locations in catalog order.
func (r *Registry) List() []Location {
	out := make([]Location, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of locations in the registry.
func (r *Registry) Len() int {
	return len(r.ordered)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
