package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeLOCClassifiesLines(t *testing.T) {
	src := []byte("package main\n\n// doc comment\nfunc main() {\n\tprintln(\"hi\")\n}\n")
	loc := ComputeLOC(src, "go")

	require.Equal(t, 6.0, loc.SLOC.Sum)
	require.Equal(t, 1.0, loc.Blank.Sum)
	require.Equal(t, 1.0, loc.CLOC.Sum)
	require.Equal(t, 4.0, loc.PLOC.Sum)
}

func TestComputeLOCMergeSumsAcrossFiles(t *testing.T) {
	a := ComputeLOC([]byte("x\ny\n"), "go")
	b := ComputeLOC([]byte("x\ny\nz\n"), "go")

	merged := a
	merged.Merge(b)

	require.Equal(t, a.SLOC.Sum+b.SLOC.Sum, merged.SLOC.Sum)
	require.Equal(t, 2.0, merged.SLOC.Min)
	require.Equal(t, 3.0, merged.SLOC.Max)
}

func TestComputeLOCEmptySource(t *testing.T) {
	loc := ComputeLOC([]byte(""), "go")
	require.Equal(t, 0.0, loc.SLOC.Sum)
}
