package metrics

import (
	"math"

	"codegraph/internal/ast"
)

var abcAssignmentKinds = map[string]bool{
	"assignment_expression": true, "assignment_statement": true,
	"short_var_declaration": true, "augmented_assignment": true,
	"var_declaration": true, "const_declaration": true,
}

var abcBranchKinds = map[string]bool{
	"call_expression": true,
}

var abcConditionKinds = map[string]bool{
	"if_statement": true, "if_expression": true, "binary_expression": true,
	"boolean_operator": true, "comparison_operator": true, "binary_operator": true,
	"case_clause": true, "switch_case": true, "expression_case": true,
}

// ABC holds the raw Assignment/Branch/Condition tallies the ABC metric
// is the Euclidean magnitude of.
type ABC struct {
	Assignments int
	Branches    int
	Conditions  int
}

// Magnitude is the ABC score: sqrt(A^2 + B^2 + C^2).
func (a ABC) Magnitude() float64 {
	return math.Sqrt(float64(a.Assignments*a.Assignments + a.Branches*a.Branches + a.Conditions*a.Conditions))
}

// ComputeABC tallies unit's assignment, branch (call), and condition
// node kinds and returns the raw counts; call Magnitude for the scalar
// score.
func ComputeABC(unit *ast.Node) ABC {
	var a ABC
	for _, n := range unit.DescendantsBFS() {
		switch {
		case abcAssignmentKinds[n.Kind()]:
			a.Assignments++
		case abcBranchKinds[n.Kind()]:
			a.Branches++
		case abcConditionKinds[n.Kind()]:
			a.Conditions++
		}
	}
	return a
}
