package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Naming  []*NamingBlock `hcl:"naming,block"`
	Solvers []*SolverBlock `hcl:"solver,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

// NamingBlock maps to a `naming` block.
type NamingBlock struct {
	Rule  *string      `hcl:"rule,optional"`
	Roles []*RoleBlock `hcl:"role,block"`
}

// RoleBlock maps to a `role "<name>"` block inside `naming`.
type RoleBlock struct {
	Name   string `hcl:"name,label"`
	Suffix string `hcl:"suffix"`
}

// SolverBlock maps to a `solver "<class>" "<name>"` block.
type SolverBlock struct {
	Class     string         `hcl:"class,label"`
	Name      string         `hcl:"name,label"`
	Side      string         `hcl:"side,optional"`
	Chain     []string       `hcl:"chain"`
	Parent    string         `hcl:"parent,optional"`
	Active    hcl.Expression `hcl:"active,optional"`
	Params    hcl.Expression `hcl:"params,optional"`
	DeclRange hcl.Range      `hcl:",def_range"`
}
