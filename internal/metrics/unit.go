package metrics

import "codegraph/internal/ast"

// functionKinds are the node kinds a "unit" (function/method) is
// rooted at, per grammar.
var functionKinds = map[ast.Language][]string{
	ast.LanguageGo:         {"function_declaration", "method_declaration", "func_literal"},
	ast.LanguagePython:     {"function_definition"},
	ast.LanguageRust:       {"function_item", "closure_expression"},
	ast.LanguageJavaScript: {"function_declaration", "method_definition", "arrow_function", "function_expression"},
	ast.LanguageTypeScript: {"function_declaration", "method_definition", "arrow_function", "function_expression"},
}

var paramListKinds = map[string]bool{
	"parameter_list": true, "parameters": true, "formal_parameters": true,
}

var paramKinds = map[string]bool{
	"parameter_declaration": true, "parameter": true, "required_parameter": true,
	"optional_parameter": true, "identifier": true, "typed_parameter": true,
	"default_parameter": true,
}

var returnKinds = map[string]bool{
	"return_statement": true, "return_expression": true,
}

var classKinds = map[ast.Language][]string{
	ast.LanguageGo:         nil,
	ast.LanguagePython:     {"class_definition"},
	ast.LanguageRust:       {"impl_item", "struct_item"},
	ast.LanguageJavaScript: {"class_declaration"},
	ast.LanguageTypeScript: {"class_declaration", "interface_declaration"},
}

// Units holds the per-unit counts the original groups as
// NomStats/NargsStats/NpmStats/NpaStats/ExitStats: number of
// methods/functions, their argument counts, and their exit points.
type Units struct {
	NOM   Stat // number of methods/functions found
	NARGS Stat // argument count per unit
	NPM   Stat // number of public (exported) methods
	NPA   Stat // number of public (exported) attributes/fields on enclosing types
	EXIT  Stat // exit points (return/early-return statements) per unit
}

// Merge folds other's submetrics into u.
func (u *Units) Merge(other Units) {
	u.NOM.Merge(other.NOM)
	u.NARGS.Merge(other.NARGS)
	u.NPM.Merge(other.NPM)
	u.NPA.Merge(other.NPA)
	u.EXIT.Merge(other.EXIT)
}

// FindUnits returns every function/method-rooted node under root for
// lang, in breadth-first order.
func FindUnits(root *ast.Node, lang ast.Language) []*ast.Node {
	var out []*ast.Node
	kinds := functionKinds[lang]
	if len(kinds) == 0 {
		return out
	}
	wanted := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}
	for _, n := range root.DescendantsBFS() {
		if wanted[n.Kind()] {
			out = append(out, n)
		}
	}
	return out
}

// countParams returns the argument count for a unit rooted at fn: the
// number of named children of its first parameter-list child.
func countParams(fn *ast.Node) int {
	for _, c := range fn.Children() {
		if paramListKinds[c.Kind()] {
			count := 0
			for _, p := range c.NamedChildren() {
				if paramKinds[p.Kind()] {
					count++
				}
			}
			return count
		}
	}
	return 0
}

// countExits returns the number of return-family statements directly
// inside fn's body (not inside a nested function literal).
func countExits(fn *ast.Node, lang ast.Language) int {
	nestedKinds := map[string]bool{}
	for _, k := range functionKinds[lang] {
		nestedKinds[k] = true
	}
	count := 0
	var walk func(n *ast.Node, isRoot bool)
	walk = func(n *ast.Node, isRoot bool) {
		if !isRoot && nestedKinds[n.Kind()] {
			return
		}
		if returnKinds[n.Kind()] {
			count++
		}
		for _, c := range n.Children() {
			walk(c, false)
		}
	}
	walk(fn, true)
	if count == 0 {
		// Falling off the end of a unit with no explicit return is
		// still one exit point.
		return 1
	}
	return count
}

// isExportedName reports whether name would be considered publicly
// visible by lang's own convention (Go's leading-capital rule, or
// everything else's lack of one).
func isExportedName(name string, lang ast.Language) bool {
	if name == "" {
		return false
	}
	if lang != ast.LanguageGo {
		return !(name[0] == '_')
	}
	return name[0] >= 'A' && name[0] <= 'Z'
}

// nameOf returns a unit's declared name, if its grammar exposes one as
// a direct identifier-kind child.
func nameOf(fn *ast.Node) string {
	for _, c := range fn.Children() {
		switch c.Kind() {
		case "identifier", "field_identifier", "property_identifier", "type_identifier":
			return c.Text()
		}
	}
	return ""
}

// ComputeUnits walks every function/method under root and aggregates
// their NOM/NARGS/NPM/EXIT counts. NPA (public attribute count) is
// computed separately per enclosing type by ComputeClassAttributes,
// since attributes belong to the type, not to any one method.
func ComputeUnits(root *ast.Node, lang ast.Language) Units {
	var u Units
	for _, fn := range FindUnits(root, lang) {
		u.NOM.Add(1)
		u.NARGS.Add(float64(countParams(fn)))
		u.EXIT.Add(float64(countExits(fn, lang)))
		if isExportedName(nameOf(fn), lang) {
			u.NPM.Add(1)
		}
	}
	return u
}
