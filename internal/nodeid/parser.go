package nodeid

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// ValidName reports whether name can be used as a path segment. Segments
// must be valid HCL identifiers so that expressions can reference them.
func ValidName(name string) bool {
	return hclsyntax.ValidIdentifier(name)
}

// Parse reads the canonical string form of an address, such as
// `arm_L_Input_GRP.Input_Parameters.blendweight` or `chain.bones[2]`. The
// string is parsed as an absolute HCL traversal, so exactly the addresses an
// expression could reference are accepted.
func Parse(rawID string) (*Address, error) {
	if rawID == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}
	tr, diags := hclsyntax.ParseTraversalAbs([]byte(rawID), "", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid identifier %q: %w", rawID, diags)
	}
	addr, err := FromTraversal(tr)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier %q: %w", rawID, err)
	}
	return addr, nil
}
