package normalize

import "github.com/rotisserie/eris"

// Registry maps source keys to adapters.
type Registry struct {
	adapters map[string]Adapter
	order    []string // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// DefaultRegistry returns the registry of all built-in sources in processing
// order. Order matters: for cross-source duplicates the earlier source's
// record survives.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(AdelaideFestival{})
	r.Register(Eventbrite{})
	r.Register(GoogleEvents{})
	r.Register(SouthAustralia{})
	r.Register(Ticketmaster{})
	return r
}

// Register adds an adapter. Registering a key twice replaces the adapter but
// keeps the original position.
func (r *Registry) Register(a Adapter) {
	key := a.Key()
	if _, exists := r.adapters[key]; !exists {
		r.order = append(r.order, key)
	}
	r.adapters[key] = a
}

// Get returns an adapter by key.
func (r *Registry) Get(key string) (Adapter, error) {
	a, ok := r.adapters[key]
	if !ok {
		return nil, eris.Errorf("normalize: unknown source %q", key)
	}
	return a, nil
}

// Select returns the named adapters in registration order, or all adapters
// when names is empty.
func (r *Registry) Select(names []string) ([]Adapter, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := r.Get(n); err != nil {
			return nil, err
		}
		want[n] = true
	}
	var result []Adapter
	for _, key := range r.order {
		if want[key] {
			result = append(result, r.adapters[key])
		}
	}
	return result, nil
}

// All returns all adapters in registration order.
func (r *Registry) All() []Adapter {
	result := make([]Adapter, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.adapters[key])
	}
	return result
}

// Keys returns all registered keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
