package expr_test

import (
	"sync"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/require"
	"github.com/vk/riglab/internal/expr"
)

func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	parsed, err := expr.Parse(src)
	require.NoError(t, err)
	return parsed
}

func TestContainer_AddAndExtract(t *testing.T) {
	c := expr.NewContainer()
	c.Add(
		parseExpr(t, `ctr_dist("root", "eff") / 2`),
		parseExpr(t, `arm.Input_Parameters.stretch`),
		parseExpr(t, `max(arm.Helper_Parameters.ss_factor, 1)`),
		parseExpr(t, `arm.Input_Parameters.stretch`), // Duplicate reference
	)

	require.Equal(t, []string{"ctr_dist", "max"}, c.CalledFunctions())

	refs := c.References()
	require.Len(t, refs, 2)
	require.Equal(t, []string{
		"arm.Helper_Parameters.ss_factor",
		"arm.Input_Parameters.stretch",
	}, []string{expr.TraversalKey(refs[0]), expr.TraversalKey(refs[1])})
}

func TestContainer_AddAfterExtract(t *testing.T) {
	c := expr.NewContainer()
	require.NoError(t, c.AddSource(`a.p.first`))
	require.Len(t, c.References(), 1)

	require.NoError(t, c.AddSource(`a.p.second`, `min(a.p.first, 1)`))

	require.Equal(t, []string{"min"}, c.CalledFunctions())
	require.Len(t, c.References(), 2)
}

func TestContainer_AddSourceRejectsInvalid(t *testing.T) {
	c := expr.NewContainer()
	require.Error(t, c.AddSource(`a.b +`))
	require.Empty(t, c.References())
}

func TestContainer_ConcurrentAccess(t *testing.T) {
	c := expr.NewContainer()
	require.NoError(t, c.AddSource(`a.p.x`, `a.p.y`, `abs(a.p.x)`))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				require.Len(t, c.References(), 2)
			} else {
				require.Len(t, c.CalledFunctions(), 1)
			}
		}(i)
	}
	wg.Wait()
}

func TestContainer_EdgeCases(t *testing.T) {
	t.Run("Empty Container", func(t *testing.T) {
		c := expr.NewContainer()
		require.Empty(t, c.References())
		require.Empty(t, c.CalledFunctions())
	})

	t.Run("Adding Nil Expressions", func(t *testing.T) {
		c := expr.NewContainer()
		c.Add(nil, parseExpr(t, `a.p.x`), nil)
		require.Len(t, c.References(), 1)
	})
}
