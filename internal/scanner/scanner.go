package scanner

import (
	"fmt"

	"SignalScanner/internal/ports"
)

// Registry keeps the set of configured source adapters in registration order.
type Registry struct {
	sources map[string]ports.Source
	order   []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.Source{}}
}

// Register adds or replaces a source adapter.
func (r *Registry) Register(src ports.Source) {
	if r.sources == nil {
		r.sources = map[string]ports.Source{}
	}
	if _, exists := r.sources[src.Name()]; !exists {
		r.order = append(r.order, src.Name())
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.Source, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// All returns every registered source in registration order.
func (r *Registry) All() []ports.Source {
	out := make([]ports.Source, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sources[name])
	}
	return out
}
