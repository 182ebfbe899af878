package nodeid

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	testCases := []struct {
		name        string
		addr        *Address
		expectedStr string
	}{
		{
			name:        "parameter",
			addr:        ForParam("knee_JNT", "kine", "sclx"),
			expectedStr: "knee_JNT.kine.sclx",
		},
		{
			name: "path with indices",
			addr: &Address{
				Path: []PathSegment{NewPathSegment("chain"), NewPathSegmentWithIndex("bones", 0)},
			},
			expectedStr: "chain.bones[0]",
		},
		{
			name:        "nil address",
			addr:        nil,
			expectedStr: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.addr.String())
		})
	}
}

func TestAddress_NodeAndLeaf(t *testing.T) {
	addr := ForParam("arm_L_Helper_GRP", "Helper_Parameters", "ss_factor")
	assert.Equal(t, "arm_L_Helper_GRP", addr.Node())
	assert.Equal(t, "ss_factor", addr.Leaf())
	assert.Equal(t, "", (*Address)(nil).Node())
}

func TestAddress_Equal(t *testing.T) {
	addr1, _ := Parse("a.b[0]")
	addr2, _ := Parse("a.b[0]")
	addr3, _ := Parse("a.b[1]")

	assert.True(t, addr1.Equal(addr2))
	assert.False(t, addr1.Equal(addr3))
	assert.False(t, addr1.Equal(nil))
	assert.True(t, (*Address)(nil).Equal(nil))
}

func TestAddress_TraversalRoundTrip(t *testing.T) {
	for _, raw := range []string{"a.b.c", "chain.bones[3].roll", "single"} {
		t.Run(raw, func(t *testing.T) {
			addr, err := Parse(raw)
			require.NoError(t, err)

			back, err := FromTraversal(addr.Traversal())
			require.NoError(t, err)
			assert.True(t, addr.Equal(back))
		})
	}
}

func TestFromTraversal_ParsedExpression(t *testing.T) {
	expr, diags := hclsyntax.ParseExpression([]byte("arm_Input.Input_Parameters.active"), "t", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors())

	vars := expr.Variables()
	require.Len(t, vars, 1)

	addr, err := FromTraversal(vars[0])
	require.NoError(t, err)
	assert.Equal(t, "arm_Input.Input_Parameters.active", addr.String())
}
