package testutil

import "github.com/vk/riglab/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single solver variant.
type SimpleModule struct {
	Classname string
	Factory   registry.Factory
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Classname != "" && m.Factory != nil {
		r.RegisterVariant(m.Classname, m.Factory)
	}
}
