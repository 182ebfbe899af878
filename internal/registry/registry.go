package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/riglab/internal/solver"
)

// Module is the interface that all variant modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Factory creates a fresh variant instance.
type Factory func() solver.Variant

// Registry holds the registered variant factories for a single application
// instance.
type Registry struct {
	variants map[string]Factory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{variants: make(map[string]Factory)}
}

// RegisterVariant registers the factory serving a classname. Registering a
// classname twice is a programming error and panics.
func (r *Registry) RegisterVariant(classname string, f Factory) {
	if _, exists := r.variants[classname]; exists {
		panic(fmt.Sprintf("solver variant with classname '%s' already registered", classname))
	}
	slog.Debug("Registering solver variant.", "classname", classname)
	r.variants[classname] = f
}

// Lookup returns a new variant for classname. Its signature matches the
// resolver expected by solver.Load.
func (r *Registry) Lookup(classname string) (solver.Variant, bool) {
	f, ok := r.variants[classname]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Classnames returns the registered classnames in sorted order.
func (r *Registry) Classnames() []string {
	out := make([]string, 0, len(r.variants))
	for name := range r.variants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
