package metrics

import "codegraph/internal/ast"

// CodeMetrics bundles every submetric computed for one file, mirroring
// the field set strategy.rs's CodeMetrics composes (loc, cyclomatic,
// halstead, abc, cognitive, exit/nom/nargs/npm/npa) though here each
// submetric is actually computed from the syntax tree rather than left
// as a Default() stub.
type CodeMetrics struct {
	LOC        LOC
	Cyclomatic Stat
	Cognitive  Stat
	Halstead   HalsteadTotals
	ABC        Stat
	Units      Units
}

// HalsteadTotals accumulates Halstead's derived scalar measures across
// however many units contributed to a CodeMetrics, since the raw
// operator/operand tallies are not themselves commutative in a useful
// way (merging two units' distinct-operator sets requires knowing
// which operators overlapped, which Stat cannot represent) — only the
// derived per-unit scalars are tracked for aggregation.
type HalsteadTotals struct {
	Volume     Stat
	Difficulty Stat
	Effort     Stat
}

func (h *HalsteadTotals) add(u Halstead) {
	h.Volume.Add(u.Volume())
	h.Difficulty.Add(u.Difficulty())
	h.Effort.Add(u.Effort())
}

func (h *HalsteadTotals) merge(other HalsteadTotals) {
	h.Volume.Merge(other.Volume)
	h.Difficulty.Merge(other.Difficulty)
	h.Effort.Merge(other.Effort)
}

// Merge combines other into m, matching MetricsAggregator.aggregate's
// fold-by-merge over every submetric.
func (m *CodeMetrics) Merge(other CodeMetrics) {
	m.LOC.Merge(other.LOC)
	m.Cyclomatic.Merge(other.Cyclomatic)
	m.Cognitive.Merge(other.Cognitive)
	m.Halstead.merge(other.Halstead)
	m.ABC.Merge(other.ABC)
	m.Units.Merge(other.Units)
}

// Compute produces the full CodeMetrics for one parsed file: LOC is
// computed once over the whole source; cyclomatic, cognitive, Halstead,
// and ABC are computed per function/method unit found in the tree and
// folded into Stats so a file's complexity distribution (not just its
// total) survives aggregation; NPA is computed per enclosing type.
func Compute(tree *ast.Tree, source []byte) CodeMetrics {
	var m CodeMetrics
	lang := tree.Language()
	m.LOC = ComputeLOC(source, string(lang))

	root := tree.Root()
	for _, unit := range FindUnits(root, lang) {
		m.Cyclomatic.Add(float64(ComputeCyclomatic(unit, lang)))
		m.Cognitive.Add(float64(ComputeCognitive(unit, lang)))
		m.Halstead.add(ComputeHalstead(unit))
		m.ABC.Add(ComputeABC(unit).Magnitude())
	}
	m.Units = ComputeUnits(root, lang)
	m.Units.NPA = ComputeClassAttributes(root, lang)
	return m
}
