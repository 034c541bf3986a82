package metrics

import (
	"context"
	"testing"

	"codegraph/internal/ast"
	"codegraph/internal/parser"

	"github.com/stretchr/testify/require"
)

const sampleGo = `package sample

func classify(n int) string {
	if n < 0 {
		return "negative"
	} else if n == 0 {
		return "zero"
	}
	for i := 0; i < n; i++ {
		if i%2 == 0 && i > 0 {
			continue
		}
	}
	return "positive"
}
`

func TestComputeProducesNonZeroMetricsForGoFunction(t *testing.T) {
	p := parser.New()
	tree, err := p.Parse(context.Background(), ast.LanguageGo, []byte(sampleGo))
	require.NoError(t, err)
	defer tree.Close()

	m := Compute(tree, []byte(sampleGo))

	require.EqualValues(t, 1, m.Units.NOM.Count)
	require.Greater(t, m.Cyclomatic.Sum, 1.0)
	require.Greater(t, m.Cognitive.Sum, 0.0)
	require.Greater(t, m.Halstead.Volume.Sum, 0.0)
	require.Greater(t, m.LOC.SLOC.Sum, 0.0)
}

func TestComputeUnitsCountsParamsAndExits(t *testing.T) {
	p := parser.New()
	tree, err := p.Parse(context.Background(), ast.LanguageGo, []byte(sampleGo))
	require.NoError(t, err)
	defer tree.Close()

	units := ComputeUnits(tree.Root(), ast.LanguageGo)
	require.EqualValues(t, 1, units.NOM.Count)
	require.Equal(t, 1.0, units.NARGS.Sum)
	require.GreaterOrEqual(t, units.EXIT.Sum, 3.0)
}
