// Package ast wraps tree-sitter parse trees with the node API, visitor
// protocol, structural diff, and pattern matching the code-knowledge
// pipeline needs, independent of any one language's grammar. Grounded
// on the teacher's tree-sitter integration
// (internal/world/ast_treesitter.go, internal/world/parser_interface.go)
// generalized from "parse and immediately extract facts" into a
// reusable, walkable tree type the metrics and code-unit layers both
// consume.
package ast

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language identifies a supported grammar.
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageRust       Language = "rust"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageC          Language = "c"
	LanguageCPP        Language = "cpp"
)

var extensionLanguage = map[string]Language{
	".go":  LanguageGo,
	".py":  LanguagePython,
	".rs":  LanguageRust,
	".js":  LanguageJavaScript,
	".jsx": LanguageJavaScript,
	".ts":  LanguageTypeScript,
	".tsx": LanguageTypeScript,
	".c":   LanguageC,
	".h":   LanguageC,
	".cc":  LanguageCPP,
	".cpp": LanguageCPP,
	".hpp": LanguageCPP,
}

// DetectLanguage maps a file path's extension to a supported grammar.
func DetectLanguage(path string) (Language, bool) {
	lang, ok := extensionLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// Tree owns a parsed tree-sitter tree and the source bytes it was
// parsed from. Node pointers returned from a Tree are valid only while
// the Tree is alive; call Close when done with it.
type Tree struct {
	raw    *sitter.Tree
	source []byte
	lang   Language
}

// NewTree wraps a freshly parsed tree-sitter tree for the given source
// and grammar. Callers (internal/parser) own parsing; this package owns
// walking the result.
func NewTree(raw *sitter.Tree, source []byte, lang Language) *Tree {
	return &Tree{raw: raw, source: source, lang: lang}
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node {
	return &Node{raw: t.raw.RootNode(), source: t.source}
}

// Language returns the grammar the tree was parsed with.
func (t *Tree) Language() Language { return t.lang }

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.raw != nil {
		t.raw.Close()
	}
}

// Node wraps a single tree-sitter node with the read-only API the
// metrics and pattern-matching layers walk over.
type Node struct {
	raw    *sitter.Node
	source []byte
}

// Kind returns the grammar production name (tree-sitter's node type).
func (n *Node) Kind() string { return n.raw.Type() }

// Text returns the node's source text.
func (n *Node) Text() string { return n.raw.Content(n.source) }

// ChildCount returns the number of direct children, named and anonymous.
func (n *Node) ChildCount() int { return int(n.raw.ChildCount()) }

// Children returns every direct child.
func (n *Node) Children() []*Node {
	count := int(n.raw.ChildCount())
	out := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, &Node{raw: n.raw.Child(i), source: n.source})
	}
	return out
}

// NamedChildren returns direct children the grammar marks as named
// (excludes punctuation/keyword leaves).
func (n *Node) NamedChildren() []*Node {
	count := int(n.raw.NamedChildCount())
	out := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, &Node{raw: n.raw.NamedChild(i), source: n.source})
	}
	return out
}

// Parent returns the node's parent, or nil at the root.
func (n *Node) Parent() *Node {
	p := n.raw.Parent()
	if p == nil {
		return nil
	}
	return &Node{raw: p, source: n.source}
}

// StartByte and EndByte give the node's byte offsets in the source.
func (n *Node) StartByte() uint32 { return n.raw.StartByte() }
func (n *Node) EndByte() uint32   { return n.raw.EndByte() }

// StartRowCol and EndRowCol give the node's 0-indexed row/column.
func (n *Node) StartRowCol() (row, col uint32) {
	p := n.raw.StartPoint()
	return p.Row, p.Column
}

func (n *Node) EndRowCol() (row, col uint32) {
	p := n.raw.EndPoint()
	return p.Row, p.Column
}

// IsMultiline reports whether the node spans more than one source line.
func (n *Node) IsMultiline() bool {
	startRow, _ := n.StartRowCol()
	endRow, _ := n.EndRowCol()
	return endRow > startRow
}

// Depth returns the node's distance from the tree root.
func (n *Node) Depth() int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		depth++
	}
	return depth
}

// PathKinds returns the Kind() of every ancestor from the root down to
// and including this node.
func (n *Node) PathKinds() []string {
	var chain []*Node
	for cur := n; cur != nil; cur = cur.Parent() {
		chain = append(chain, cur)
	}
	kinds := make([]string, len(chain))
	for i, node := range chain {
		kinds[len(chain)-1-i] = node.Kind()
	}
	return kinds
}

// FindDescendantsOfKind returns every descendant (this node excluded)
// whose Kind equals kind, in breadth-first order.
func (n *Node) FindDescendantsOfKind(kind string) []*Node {
	var out []*Node
	for _, d := range n.DescendantsBFS() {
		if d.Kind() == kind {
			out = append(out, d)
		}
	}
	return out
}

// DescendantsBFS returns every descendant (this node excluded) in
// breadth-first order.
func (n *Node) DescendantsBFS() []*Node {
	var out []*Node
	queue := n.Children()
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		queue = append(queue, cur.Children()...)
	}
	return out
}
