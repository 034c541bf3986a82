package metrics

import (
	"math"

	"codegraph/internal/ast"
)

// operatorKinds are node kinds counted as Halstead operators: anything
// that is itself a computation or control construct rather than a bare
// value or name. operandKinds are counted as operands: identifiers and
// literals. Everything else (punctuation, keywords already covered by
// their parent construct) is ignored, the common simplification tools
// built over a generic grammar use in place of a hand-tuned
// per-language operator table.
var operatorKinds = map[string]bool{
	"binary_expression": true, "unary_expression": true, "assignment_expression": true,
	"assignment_statement": true, "short_var_declaration": true, "call_expression": true,
	"if_statement": true, "for_statement": true, "while_statement": true, "do_statement": true,
	"return_statement": true, "switch_statement": true, "boolean_operator": true,
	"comparison_operator": true, "augmented_assignment": true, "if_expression": true,
	"while_expression": true, "loop_expression": true, "binary_operator": true,
}

var operandKinds = map[string]bool{
	"identifier": true, "field_identifier": true, "type_identifier": true,
	"int_literal": true, "float_literal": true, "string_literal": true,
	"interpreted_string_literal": true, "raw_string_literal": true,
	"integer": true, "string": true, "number": true, "true": true, "false": true, "nil": true, "none": true,
}

// Halstead holds the classical Halstead software-science measures,
// computed from distinct/total operator and operand counts walked out
// of the syntax tree.
type Halstead struct {
	DistinctOperators int
	DistinctOperands  int
	TotalOperators    int
	TotalOperands     int
}

// Vocabulary, Length, Volume, Difficulty, and Effort are the derived
// Halstead measures; see Wikipedia's "Halstead complexity measures" for
// the standard formulas this mirrors.
func (h Halstead) Vocabulary() int     { return h.DistinctOperators + h.DistinctOperands }
func (h Halstead) Length() int         { return h.TotalOperators + h.TotalOperands }
func (h Halstead) Volume() float64 {
	vocab := h.Vocabulary()
	if vocab == 0 {
		return 0
	}
	return float64(h.Length()) * math.Log2(float64(vocab))
}
func (h Halstead) Difficulty() float64 {
	if h.DistinctOperands == 0 {
		return 0
	}
	return (float64(h.DistinctOperators) / 2) * (float64(h.TotalOperands) / float64(h.DistinctOperands))
}
func (h Halstead) Effort() float64 { return h.Difficulty() * h.Volume() }

// ComputeHalstead walks unit's descendants, classifying each node by
// kind into the operator or operand tally.
func ComputeHalstead(unit *ast.Node) Halstead {
	operatorCounts := map[string]int{}
	operandCounts := map[string]int{}

	var visit func(n *ast.Node)
	visit = func(n *ast.Node) {
		switch {
		case operatorKinds[n.Kind()]:
			operatorCounts[n.Kind()]++
		case operandKinds[n.Kind()]:
			operandCounts[n.Text()]++
		}
		for _, c := range n.Children() {
			visit(c)
		}
	}
	visit(unit)

	var h Halstead
	h.DistinctOperators = len(operatorCounts)
	h.DistinctOperands = len(operandCounts)
	for _, n := range operatorCounts {
		h.TotalOperators += n
	}
	for _, n := range operandCounts {
		h.TotalOperands += n
	}
	return h
}
