package ident

import (
	"fmt"
	"sync"
)

// Registry holds the known identifier kinds in registration order.
// Registration order doubles as priority: when two kinds match a text at
// the same offset, the earlier-registered kind sorts first. A Registry is
// safe for concurrent use; registration never replaces or removes a kind.
type Registry struct {
	mu    sync.RWMutex
	kinds []Kind
	names map[string]int // name -> position in kinds
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]int)}
}

// Register adds a kind under its name. Registering a name twice returns
// ErrDuplicateKind and leaves the original registration in place.
func (r *Registry) Register(k Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := k.Name()
	if _, exists := r.names[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, name)
	}
	r.names[name] = len(r.kinds)
	r.kinds = append(r.kinds, k)
	return nil
}

// MustRegister is Register for static wiring; it panics on a duplicate name.
func (r *Registry) MustRegister(k Kind) {
	if err := r.Register(k); err != nil {
		panic(err)
	}
}

// Get returns the kind registered under name, or ErrUnknownKind.
func (r *Registry) Get(name string) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, name)
	}
	return r.kinds[i], nil
}

// All returns a snapshot of the registered kinds in registration order.
// Registrations made after the call are not visible in the returned slice.
func (r *Registry) All() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Kind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// Names returns the registered kind names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.kinds))
	for i, k := range r.kinds {
		out[i] = k.Name()
	}
	return out
}
