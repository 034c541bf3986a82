package ast

// Pattern selects nodes by kind and an optional text predicate, the
// minimal structural query the search and metrics layers need (e.g.
// "every call_expression whose callee text is 'panic'").
type Pattern struct {
	Kind      string
	TextMatch func(text string) bool
}

// FindMatches returns every descendant of root (root included) matching
// p, in document order (pre-order: a node before its children).
func FindMatches(root *Node, p Pattern) []*Node {
	var out []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		if matches(n, p) {
			out = append(out, n)
		}
		for _, c := range n.Children() {
			visit(c)
		}
	}
	visit(root)
	return out
}

func matches(n *Node, p Pattern) bool {
	if p.Kind != "" && n.Kind() != p.Kind {
		return false
	}
	if p.TextMatch != nil && !p.TextMatch(n.Text()) {
		return false
	}
	return true
}
