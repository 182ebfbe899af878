package expr

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an hcl.Traversal,
// suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// extractReferencesAndFunctions walks expressions to find all unique variable
// traversals and function calls. The returned slices are sorted.
func extractReferencesAndFunctions(exprs ...hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	functions := make(map[string]struct{})

	for _, e := range exprs {
		if e == nil {
			continue
		}
		for _, traversal := range e.Variables() {
			traversals[TraversalKey(traversal)] = traversal
		}
		if syntaxExpr, ok := e.(hclsyntax.Expression); ok {
			walkForFunctions(syntaxExpr, functions)
		}
	}

	keys := make([]string, 0, len(traversals))
	for k := range traversals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	traversalSlice := make([]hcl.Traversal, 0, len(keys))
	for _, k := range keys {
		traversalSlice = append(traversalSlice, traversals[k])
	}

	functionSlice := make([]string, 0, len(functions))
	for f := range functions {
		functionSlice = append(functionSlice, f)
	}
	sort.Strings(functionSlice)

	return traversalSlice, functionSlice
}

// walkForFunctions recursively walks the syntax tree collecting function names.
func walkForFunctions(e hclsyntax.Expression, functions map[string]struct{}) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[n.Name] = struct{}{}
		for _, arg := range n.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(n.LHS, functions)
		walkForFunctions(n.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(n.Condition, functions)
		walkForFunctions(n.TrueResult, functions)
		walkForFunctions(n.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(n.Val, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(n.Expression, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range n.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.IndexExpr:
		walkForFunctions(n.Collection, functions)
		walkForFunctions(n.Key, functions)
	}
}
