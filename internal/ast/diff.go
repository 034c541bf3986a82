package ast

import "github.com/google/go-cmp/cmp"

// ChangeKind classifies a single node-level difference between two
// trees parsed from different revisions of the same file.
type ChangeKind string

const (
	Added       ChangeKind = "Added"
	Removed     ChangeKind = "Removed"
	Modified    ChangeKind = "Modified"
	KindChanged ChangeKind = "KindChanged"
)

// Change describes one structural difference found by Diff.
type Change struct {
	Kind ChangeKind
	Path string // "/"-joined kinds below the root, e.g. "/function_declaration/block"; "" for the root
	Old  *Node
	New  *Node
}

// Diff walks oldRoot and newRoot in lockstep by named-child position,
// reporting Added/Removed/Modified/KindChanged at the point two trees
// first diverge along each branch. It does not attempt tree-edit-
// distance matching across reordered siblings — callers needing that
// should re-run Diff per matched pair identified elsewhere (e.g. by
// qualified name).
func Diff(oldRoot, newRoot *Node) []Change {
	var changes []Change
	diffNode("", oldRoot, newRoot, &changes)
	return changes
}

func diffNode(path string, oldN, newN *Node, changes *[]Change) {
	switch {
	case oldN == nil && newN == nil:
		return
	case oldN == nil:
		*changes = append(*changes, Change{Kind: Added, Path: path, New: newN})
		return
	case newN == nil:
		*changes = append(*changes, Change{Kind: Removed, Path: path, Old: oldN})
		return
	}

	if oldN.Kind() != newN.Kind() {
		*changes = append(*changes, Change{Kind: KindChanged, Path: path, Old: oldN, New: newN})
		return
	}

	oldChildren := oldN.NamedChildren()
	newChildren := newN.NamedChildren()
	if len(oldChildren) == 0 && len(newChildren) == 0 {
		if !cmp.Equal(oldN.Text(), newN.Text()) {
			*changes = append(*changes, Change{Kind: Modified, Path: path, Old: oldN, New: newN})
		}
		return
	}

	max := len(oldChildren)
	if len(newChildren) > max {
		max = len(newChildren)
	}
	for i := 0; i < max; i++ {
		var o, nw *Node
		if i < len(oldChildren) {
			o = oldChildren[i]
		}
		if i < len(newChildren) {
			nw = newChildren[i]
		}
		childPath := path + "/" + indexLabel(o, nw, i)
		diffNode(childPath, o, nw, changes)
	}
}

func indexLabel(o, n *Node, i int) string {
	if o != nil {
		return o.Kind()
	}
	if n != nil {
		return n.Kind()
	}
	return "?"
}
