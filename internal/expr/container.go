// Package expr builds and analyses the live driver expressions a rig installs
// on host parameters.
//
// Expressions use HCL native syntax. Parameters are referenced by their fully
// qualified scene name as a bare traversal (`arm_Input.Input_Parameters.active`)
// and host-side helpers are plain function calls (`ctr_dist("a", "b")`).
// Keeping the language in one place lets every host evaluate exactly what
// the builders emit.
package expr

import (
	"fmt"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Container gathers parsed expressions and caches the references and
// function calls found in them.
type Container struct {
	// analyzeOnce ensures the extraction logic runs exactly once per set of expressions.
	analyzeOnce sync.Once

	mu          sync.RWMutex
	expressions []hcl.Expression

	references      []hcl.Traversal
	calledFunctions []string
}

// NewContainer creates a new, empty expression container.
func NewContainer() *Container {
	return &Container{}
}

// Parse parses an expression source string.
func Parse(source string) (hcl.Expression, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(source), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid expression %q: %w", source, diags)
	}
	return parsed, nil
}

// AddSource parses and adds expression sources.
func (c *Container) AddSource(sources ...string) error {
	for _, src := range sources {
		parsed, err := Parse(src)
		if err != nil {
			return err
		}
		c.Add(parsed)
	}
	return nil
}

// Add adds one or more expressions to the container for analysis.
// It safely ignores any nil expressions.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Adding invalidates the cached analysis.
	c.analyzeOnce = sync.Once{}

	for _, e := range exprs {
		if e != nil {
			c.expressions = append(c.expressions, e)
		}
	}
}

func (c *Container) analyze() {
	c.analyzeOnce.Do(func() {
		c.mu.RLock()
		refs, funcs := extractReferencesAndFunctions(c.expressions...)
		c.mu.RUnlock()

		c.mu.Lock()
		c.references = refs
		c.calledFunctions = funcs
		c.mu.Unlock()
	})
}

// References returns all unique variable traversals found in the expressions.
func (c *Container) References() []hcl.Traversal {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.references
}

// CalledFunctions returns all unique function calls found in the expressions.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calledFunctions
}
