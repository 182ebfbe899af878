package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		rawID        string
		expectErr    bool
		expectedAddr *Address
	}{
		{
			name:         "parameter path",
			rawID:        "arm_L_Input_GRP.Input_Parameters.blendweight",
			expectedAddr: ForParam("arm_L_Input_GRP", "Input_Parameters", "blendweight"),
		},
		{
			name:  "path with index",
			rawID: "chain.bones[2].roll",
			expectedAddr: &Address{
				Path: []PathSegment{NewPathSegment("chain"), NewPathSegmentWithIndex("bones", 2), NewPathSegment("roll")},
			},
		},
		{
			name:         "single node",
			rawID:        "arm_L_Root_GRP",
			expectedAddr: ForNode("arm_L_Root_GRP"),
		},
		{
			name:      "error - empty path segment",
			rawID:     "a..b",
			expectErr: true,
		},
		{
			name:      "error - invalid index",
			rawID:     "a.b[x]",
			expectErr: true,
		},
		{
			name:      "error - empty string",
			rawID:     "",
			expectErr: true,
		},
		{
			name:      "error - leading digit is not an identifier",
			rawID:     "0arm.kine.sclx",
			expectErr: true,
		},
		{
			name:      "error - just hyphen",
			rawID:     "-",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.rawID)

			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, addr)
			assert.True(t, tc.expectedAddr.Equal(addr), "Parsed address does not match expected address")
		})
	}
}

func TestParse_RoundTripsString(t *testing.T) {
	for _, raw := range []string{"arm_0_JNT.kine.sclx", "chain.bones[2].roll", "rig_GRP"} {
		addr, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, addr.String())
	}
}

func TestParse_RejectsStringIndex(t *testing.T) {
	_, err := Parse(`arm["L"]`)
	assert.Error(t, err)
}
