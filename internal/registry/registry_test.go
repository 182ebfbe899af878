package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/riglab/internal/config"
	"github.com/vk/riglab/internal/registry"
	"github.com/vk/riglab/internal/scene"
	"github.com/vk/riglab/internal/solver"
	"github.com/vk/riglab/internal/testutil"
)

type pairVariant struct{ solver.Hooks }

func (pairVariant) Classname() string { return "Pair" }

func (pairVariant) Validate(skeleton []scene.NodeID) bool { return len(skeleton) == 2 }

func newRegistry() *registry.Registry {
	r := registry.New()
	r.RegisterVariant("Pair", func() solver.Variant { return pairVariant{} })
	return r
}

func TestRegisterVariant(t *testing.T) {
	r := newRegistry()

	v, ok := r.Lookup("Pair")
	require.True(t, ok)
	assert.Equal(t, "Pair", v.Classname())

	_, ok = r.Lookup("Spline")
	assert.False(t, ok)
	assert.Equal(t, []string{"Pair"}, r.Classnames())

	assert.Panics(t, func() {
		r.RegisterVariant("Pair", func() solver.Variant { return pairVariant{} })
	})
}

func TestValidateModel(t *testing.T) {
	testCases := []struct {
		name    string
		model   *config.Model
		wantErr string
	}{
		{
			name:  "valid",
			model: &config.Model{Solvers: []*config.Solver{{Class: "Pair", Name: "a", Chain: []string{"x", "y"}}}},
		},
		{
			name:    "unknown class",
			model:   &config.Model{Solvers: []*config.Solver{{Class: "Spline", Name: "a", Chain: []string{"x", "y"}}}},
			wantErr: "unknown class 'Spline'",
		},
		{
			name:    "rejected chain",
			model:   &config.Model{Solvers: []*config.Solver{{Class: "Pair", Name: "a", Chain: []string{"x"}}}},
			wantErr: "rejects a chain of 1 joints",
		},
		{
			name:    "unknown naming rule",
			model:   &config.Model{Naming: &config.Naming{Rule: "camel"}},
			wantErr: "unknown naming rule",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := newRegistry().ValidateModel(testutil.Context(t), tc.model)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
