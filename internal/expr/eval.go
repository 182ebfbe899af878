package expr

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/riglab/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Resolver returns the current value of the parameter at addr.
type Resolver func(addr *nodeid.Address) (cty.Value, error)

// Evaluate evaluates a parsed expression, resolving every referenced
// parameter through resolve.
func Evaluate(e hcl.Expression, resolve Resolver, funcs map[string]function.Function) (cty.Value, error) {
	vars, err := bindVariables(e.Variables(), resolve)
	if err != nil {
		return cty.NilVal, err
	}
	v, diags := e.Value(&hcl.EvalContext{Variables: vars, Functions: funcs})
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return v, nil
}

// EvaluateSource parses and evaluates an expression source string.
func EvaluateSource(source string, resolve Resolver, funcs map[string]function.Function) (cty.Value, error) {
	parsed, err := Parse(source)
	if err != nil {
		return cty.NilVal, err
	}
	return Evaluate(parsed, resolve, funcs)
}

// varTree mirrors the nesting of referenced addresses so they can be
// presented to HCL as nested objects.
type varTree struct {
	leaf     *cty.Value
	children map[string]*varTree
}

func bindVariables(refs []hcl.Traversal, resolve Resolver) (map[string]cty.Value, error) {
	root := &varTree{children: map[string]*varTree{}}

	for _, tr := range refs {
		addr, err := nodeid.FromTraversal(tr)
		if err != nil {
			return nil, fmt.Errorf("unsupported reference %s: %w", TraversalKey(tr), err)
		}
		cur := root
		for _, seg := range addr.Path {
			if seg.HasIndex() {
				return nil, fmt.Errorf("indexed reference %s is not supported", addr)
			}
			next, ok := cur.children[seg.Name]
			if !ok {
				next = &varTree{children: map[string]*varTree{}}
				cur.children[seg.Name] = next
			}
			cur = next
		}
		if cur.leaf != nil {
			continue
		}
		val, err := resolve(addr)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", addr, err)
		}
		cur.leaf = &val
	}

	vars := make(map[string]cty.Value, len(root.children))
	for name, child := range root.children {
		v, err := child.value(name)
		if err != nil {
			return nil, err
		}
		vars[name] = v
	}
	return vars, nil
}

func (t *varTree) value(path string) (cty.Value, error) {
	if t.leaf != nil {
		if len(t.children) > 0 {
			return cty.NilVal, fmt.Errorf("%s is referenced both as a value and as an object", path)
		}
		return *t.leaf, nil
	}
	names := make([]string, 0, len(t.children))
	for name := range t.children {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make(map[string]cty.Value, len(names))
	for _, name := range names {
		v, err := t.children[name].value(path + "." + name)
		if err != nil {
			return cty.NilVal, err
		}
		attrs[name] = v
	}
	return cty.ObjectVal(attrs), nil
}
