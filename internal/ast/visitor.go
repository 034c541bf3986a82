package ast

// VisitAction controls traversal after a visitor callback returns.
type VisitAction int

const (
	// Continue descends into the node's children as normal.
	Continue VisitAction = iota
	// SkipSubtree skips the node's children but continues the walk.
	SkipSubtree
	// Stop halts the walk entirely.
	Stop
)

// Visitor receives enter/leave callbacks during a depth-first Walk.
type Visitor interface {
	VisitEnter(n *Node) VisitAction
	VisitLeave(n *Node)
}

// Walk performs a depth-first traversal of root, calling v.VisitEnter
// before descending into a node's children and v.VisitLeave after.
func Walk(root *Node, v Visitor) {
	walk(root, v)
}

func walk(n *Node, v Visitor) VisitAction {
	action := v.VisitEnter(n)
	switch action {
	case Stop:
		return Stop
	case SkipSubtree:
		v.VisitLeave(n)
		return Continue
	}
	for _, child := range n.Children() {
		if walk(child, v) == Stop {
			v.VisitLeave(n)
			return Stop
		}
	}
	v.VisitLeave(n)
	return Continue
}

// VisitorFunc adapts a pair of functions to the Visitor interface for
// callers that don't need a Leave hook.
type VisitorFunc struct {
	Enter func(n *Node) VisitAction
	Leave func(n *Node)
}

func (f VisitorFunc) VisitEnter(n *Node) VisitAction {
	if f.Enter == nil {
		return Continue
	}
	return f.Enter(n)
}

func (f VisitorFunc) VisitLeave(n *Node) {
	if f.Leave != nil {
		f.Leave(n)
	}
}
