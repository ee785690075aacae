package schema

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the current schema of every known structure set.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*StructureSchema
}

// NewRegistry creates an empty registry, optionally pre-populated.
func NewRegistry(schemas ...*StructureSchema) *Registry {
	r := &Registry{schemas: make(map[string]*StructureSchema, len(schemas))}
	for _, s := range schemas {
		r.schemas[s.Name()] = s
	}
	return r
}

// Register adds or replaces the schema for s.Name(). Replacing returns the
// previous schema so the caller can decide whether the hash changed.
func (r *Registry) Register(s *StructureSchema) (previous *StructureSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous = r.schemas[s.Name()]
	r.schemas[s.Name()] = s
	return previous
}

// Get returns the schema registered under name.
func (r *Registry) Get(name string) (*StructureSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("no structure schema registered for %q", name)
	}
	return s, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
