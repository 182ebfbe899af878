package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of a rig description.
type Model struct {
	Naming  *Naming
	Solvers []*Solver
}

// Naming configures the naming manager of a build session.
type Naming struct {
	// Rule is the naming rule; empty keeps the manager default.
	Rule string
	// Suffixes overrides or extends the role suffix table.
	Suffixes map[string]string
}

// Solver is the format-agnostic representation of a `solver` block.
type Solver struct {
	Class  string
	Name   string
	Side   string
	Chain  []string
	Parent string
	// Active is the initial state; nil leaves the solver enabled.
	Active *bool
	// Params are values applied to the solver inputs after the build,
	// keyed by parameter name.
	Params map[string]cty.Value
	// DeclRange locates the block for error messages.
	DeclRange hcl.Range
}
