package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/riglab/internal/app"
	"github.com/vk/riglab/internal/hcl_adapter"
	"github.com/vk/riglab/internal/memscene"
	"github.com/vk/riglab/internal/registry"
	"github.com/vk/riglab/internal/solver"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes files, keyed by slash-separated relative path, into a
// fresh temporary directory and returns its path.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// HarnessResult holds the outcomes of a rig run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Graph     *memscene.Store
	Solvers   []*solver.Solver
}

// SceneSetup prepares the in-memory scene before the rig is built, usually
// by creating the skeleton the rig refers to.
type SceneSetup func(t *testing.T, g *memscene.Store)

// RunRig writes the rig files, starts an App on them and builds the rig into
// a new in-memory scene. Startup panics are reported as errors.
func RunRig(t *testing.T, files map[string]string, setup SceneSetup, modules ...registry.Module) *HarnessResult {
	t.Helper()
	ctx := Context(t)

	rigDir := WriteFiles(t, files)
	cfg, err := app.NewConfig(app.Config{RigPath: rigDir, LogLevel: "debug", LogFormat: "text"})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	result := &HarnessResult{Graph: memscene.New()}
	if setup != nil {
		setup(t, result.Graph)
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		result.App = app.NewApp(logBuffer, cfg, hcl_adapter.NewLoader(), modules...)
	}()

	if result.App != nil {
		result.Solvers, result.Err = result.App.Run(ctx, result.Graph)
	}

	if os.Getenv("RIGLAB_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	result.LogOutput = logBuffer.String()
	return result
}
