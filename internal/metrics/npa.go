package metrics

import "codegraph/internal/ast"

var fieldDeclKinds = map[string]bool{
	"field_declaration": true, "public_field_definition": true,
}

// ComputeClassAttributes walks every type/class-rooted node under root
// and returns a Stat of its publicly visible field count, one sample
// per type found. NPA is scoped to types rather than to functions (a
// function has arguments and a return, a type has attributes), so it
// is computed independently of Units.
func ComputeClassAttributes(root *ast.Node, lang ast.Language) Stat {
	var npa Stat
	kinds := classKinds[lang]
	if len(kinds) == 0 {
		return npa
	}
	wanted := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}
	for _, n := range root.DescendantsBFS() {
		if !wanted[n.Kind()] {
			continue
		}
		public := 0
		for _, field := range n.DescendantsBFS() {
			if !fieldDeclKinds[field.Kind()] {
				continue
			}
			if isExportedName(nameOf(field), lang) {
				public++
			}
		}
		npa.Add(float64(public))
	}
	return npa
}
