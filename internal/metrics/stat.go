// Package metrics computes source-code size and complexity metrics over
// parsed syntax trees: the LOC family, cyclomatic and cognitive
// complexity, Halstead metrics, the ABC metric, and per-unit
// NOM/NARGS/NPM/NPA/EXIT counts. Grounded on
// original_source/cortex/cortex-code-analysis/src/metrics/loc.rs (the
// LOC submetric shapes and merge semantics) and metrics/strategy.rs
// (the CodeMetrics-as-bag-of-submetrics composition and
// MetricsAggregator.merge pattern), reworked from several
// usize::MAX-sentinel per-field structs into one reusable accumulator.
package metrics

// Stat is a commutative, associative accumulator: merging two Stats
// built from disjoint samples is equivalent to building one Stat from
// the union of those samples, in either order. The loc.rs submetrics
// each hand-rolled this (a running sum plus a usize::MAX-sentinel
// min/max pair); Stat factors that shape out once so every metric that
// needs "value, plus min/max/mean across units" can embed it.
type Stat struct {
	Sum   float64
	Min   float64
	Max   float64
	Count int64
}

// StatFrom builds a single-sample Stat.
func StatFrom(value float64) Stat {
	return Stat{Sum: value, Min: value, Max: value, Count: 1}
}

// Add folds one more sample into the accumulator.
func (s *Stat) Add(value float64) {
	if s.Count == 0 {
		*s = StatFrom(value)
		return
	}
	s.Sum += value
	if value < s.Min {
		s.Min = value
	}
	if value > s.Max {
		s.Max = value
	}
	s.Count++
}

// Merge combines other into s. The zero Stat is the identity element,
// so Merge is safe to call on an accumulator that has seen no samples
// yet in either direction.
func (s *Stat) Merge(other Stat) {
	if other.Count == 0 {
		return
	}
	if s.Count == 0 {
		*s = other
		return
	}
	s.Sum += other.Sum
	if other.Min < s.Min {
		s.Min = other.Min
	}
	if other.Max > s.Max {
		s.Max = other.Max
	}
	s.Count += other.Count
}

// Mean returns the average sample value, or 0 for an empty accumulator.
func (s Stat) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}
