package testutil

import (
	"testing"

	"github.com/vk/riglab/internal/config"
	"github.com/vk/riglab/internal/hcl_adapter"
)

// LoadHCL writes a single rig file and loads it with the HCL loader.
func LoadHCL(t *testing.T, rigHCL string) (*config.Model, error) {
	t.Helper()
	dir := WriteFiles(t, map[string]string{"rig/main.hcl": rigHCL})
	return hcl_adapter.NewLoader().Load(Context(t), dir)
}
