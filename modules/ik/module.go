package ik

import (
	"github.com/vk/riglab/internal/registry"
	"github.com/vk/riglab/internal/solver"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the IK variant under its classname.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterVariant(Classname, func() solver.Variant { return New() })
}
