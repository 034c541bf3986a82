package metrics

import "codegraph/internal/ast"

// decisionKinds lists the tree-sitter node kinds that introduce a new
// independent path through a unit of code, per grammar. Grounded on the
// CyclomaticStats/CognitiveStats fields strategy.rs composes into
// CodeMetrics (the original left their computation as a stub;
// identifying the decision points themselves is the same walk every
// tree-sitter-based complexity tool performs over its grammar's control
//-flow node kinds).
var decisionKinds = map[ast.Language]map[string]bool{
	ast.LanguageGo: {
		"if_statement": true, "for_statement": true, "expression_case": true,
		"default_case": true, "communication_case": true, "type_switch_statement": true,
		"select_statement": true,
	},
	ast.LanguagePython: {
		"if_statement": true, "for_statement": true, "while_statement": true,
		"elif_clause": true, "except_clause": true, "case_clause": true,
	},
	ast.LanguageRust: {
		"if_expression": true, "if_let_expression": true, "while_expression": true,
		"while_let_expression": true, "for_expression": true, "loop_expression": true,
		"match_arm": true,
	},
	ast.LanguageJavaScript: {
		"if_statement": true, "for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true, "switch_case": true,
		"catch_clause": true, "ternary_expression": true,
	},
	ast.LanguageTypeScript: {
		"if_statement": true, "for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true, "switch_case": true,
		"catch_clause": true, "ternary_expression": true,
	},
}

// booleanOperatorKinds are binary-expression-family node kinds whose
// short-circuit operators ("&&"/"||", "and"/"or") each add one
// independent path, the same as a decision node.
var booleanOperatorKinds = map[ast.Language]string{
	ast.LanguageGo:         "binary_expression",
	ast.LanguagePython:     "boolean_operator",
	ast.LanguageRust:       "binary_expression",
	ast.LanguageJavaScript: "binary_expression",
	ast.LanguageTypeScript: "binary_expression",
}

var shortCircuitOperators = map[string]bool{"&&": true, "||": true, "and": true, "or": true}

// ComputeCyclomatic returns McCabe cyclomatic complexity for unit: one
// base path plus one for every decision point and short-circuit boolean
// operator reachable under it.
func ComputeCyclomatic(unit *ast.Node, lang ast.Language) int {
	complexity := 1
	kinds := decisionKinds[lang]
	boolKind := booleanOperatorKinds[lang]
	for _, n := range unit.DescendantsBFS() {
		if kinds[n.Kind()] {
			complexity++
			continue
		}
		if n.Kind() == boolKind && hasShortCircuitOperator(n) {
			complexity++
		}
	}
	return complexity
}

func hasShortCircuitOperator(n *ast.Node) bool {
	for _, child := range n.Children() {
		if shortCircuitOperators[child.Text()] {
			return true
		}
	}
	return false
}

// nestingWeightKinds are the structural nodes that increment the
// nesting level cognitive complexity weighs subsequent decisions by.
var nestingWeightKinds = map[ast.Language]map[string]bool{
	ast.LanguageGo: {
		"if_statement": true, "for_statement": true, "type_switch_statement": true,
		"select_statement": true,
	},
	ast.LanguagePython: {
		"if_statement": true, "for_statement": true, "while_statement": true,
	},
	ast.LanguageRust: {
		"if_expression": true, "while_expression": true, "loop_expression": true, "for_expression": true,
	},
	ast.LanguageJavaScript: {
		"if_statement": true, "for_statement": true, "while_statement": true, "do_statement": true,
	},
	ast.LanguageTypeScript: {
		"if_statement": true, "for_statement": true, "while_statement": true, "do_statement": true,
	},
}

// ComputeCognitive returns cognitive complexity: like cyclomatic
// complexity but each decision point is weighted by one plus its
// nesting depth of other decision/loop structures, so deeply nested
// conditionals score higher than an equal number of sequential ones.
func ComputeCognitive(unit *ast.Node, lang ast.Language) int {
	kinds := decisionKinds[lang]
	nesting := nestingWeightKinds[lang]
	score := 0
	var walk func(n *ast.Node, depth int)
	walk = func(n *ast.Node, depth int) {
		childDepth := depth
		if kinds[n.Kind()] {
			score += 1 + depth
		}
		if nesting[n.Kind()] {
			childDepth = depth + 1
		}
		for _, c := range n.Children() {
			walk(c, childDepth)
		}
	}
	for _, c := range unit.Children() {
		walk(c, 0)
	}
	return score
}
