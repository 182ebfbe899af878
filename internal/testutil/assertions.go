package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertSolverBuilt checks the log output within a HarnessResult to confirm
// that a solver with the given name and class was created.
func AssertSolverBuilt(t *testing.T, result *HarnessResult, class, name string) {
	t.Helper()

	expected := fmt.Sprintf("solver=%s class=%s", name, class)
	require.True(t,
		strings.Contains(result.LogOutput, "Solver created.") && strings.Contains(result.LogOutput, expected),
		"expected log output for solver '%s' of class '%s' was not found in logs", name, class,
	)
}
