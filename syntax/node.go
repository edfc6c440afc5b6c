// Package syntax provides the syntax tree of the document language: a
// mode-aware lexer, an error-tolerant parser and a linked tree with parent and
// sibling navigation.
package syntax

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Span is a half-open byte range into the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Node is a node in a linked syntax tree. Leaves carry text, inner nodes
// carry children. Nodes are immutable once their source is built.
type Node struct {
	kind     Kind
	text     string
	children []*Node

	parent *Node
	index  int
	offset int
	len    int
}

// NewLeaf creates a leaf node.
func NewLeaf(kind Kind, text string) *Node {
	return &Node{kind: kind, text: text, len: len(text)}
}

// NewInner creates an inner node from its children.
func NewInner(kind Kind, children ...*Node) *Node {
	n := &Node{kind: kind, children: children}
	for _, c := range children {
		n.len += c.len
	}
	return n
}

func (n *Node) Kind() Kind { return n.kind }

// Text returns the text of a leaf. Inner nodes return the empty string.
func (n *Node) Text() string { return n.text }

// FullText returns the source text covered by the node.
func (n *Node) FullText() string {
	if n.IsLeaf() {
		return n.text
	}
	var b strings.Builder
	b.Grow(n.len)
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	if n.IsLeaf() {
		b.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.writeText(b)
	}
}

func (n *Node) IsLeaf() bool      { return len(n.children) == 0 }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Offset() int       { return n.offset }
func (n *Node) Len() int          { return n.len }

// Span returns the byte range covered by the node.
func (n *Node) Span() Span { return Span{Start: n.offset, End: n.offset + n.len} }

// Is reports whether n is non-nil and of the given kind.
func (n *Node) Is(kind Kind) bool { return n != nil && n.kind == kind }

// PrevSibling returns the nearest preceding non-trivia sibling.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}
	for i := n.index - 1; i >= 0; i-- {
		if c := n.parent.children[i]; !c.kind.IsTrivia() {
			return c
		}
	}
	return nil
}

// NextSibling returns the nearest following non-trivia sibling.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	for i := n.index + 1; i < len(n.parent.children); i++ {
		if c := n.parent.children[i]; !c.kind.IsTrivia() {
			return c
		}
	}
	return nil
}

// PrevSiblingKind returns the kind of the previous sibling, or End.
func (n *Node) PrevSiblingKind() Kind {
	if prev := n.PrevSibling(); prev != nil {
		return prev.kind
	}
	return End
}

// LeftmostLeaf returns the first non-trivia leaf at or below n.
func (n *Node) LeftmostLeaf() *Node {
	if n.IsLeaf() {
		if n.kind.IsTrivia() || n.len == 0 {
			return nil
		}
		return n
	}
	for _, c := range n.children {
		if leaf := c.LeftmostLeaf(); leaf != nil {
			return leaf
		}
	}
	return nil
}

// RightmostLeaf returns the last non-trivia leaf at or below n.
func (n *Node) RightmostLeaf() *Node {
	if n.IsLeaf() {
		if n.kind.IsTrivia() || n.len == 0 {
			return nil
		}
		return n
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if leaf := n.children[i].RightmostLeaf(); leaf != nil {
			return leaf
		}
	}
	return nil
}

// PrevLeaf returns the non-trivia leaf before n.
func (n *Node) PrevLeaf() *Node {
	for node := n; node != nil; node = node.parent {
		for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
			if leaf := prev.RightmostLeaf(); leaf != nil {
				return leaf
			}
		}
	}
	return nil
}

// NextLeaf returns the non-trivia leaf after n.
func (n *Node) NextLeaf() *Node {
	for node := n; node != nil; node = node.parent {
		for next := node.NextSibling(); next != nil; next = next.NextSibling() {
			if leaf := next.LeftmostLeaf(); leaf != nil {
				return leaf
			}
		}
	}
	return nil
}

// LeafAt returns the leaf the cursor sits at. A cursor on the boundary of two
// leaves belongs to the one before it.
func (n *Node) LeafAt(cursor int) *Node {
	if n.IsLeaf() {
		if cursor <= n.offset+n.len {
			return n
		}
		return nil
	}
	for i, c := range n.children {
		if (c.offset < cursor && cursor <= c.offset+c.len) ||
			(c.offset == cursor && i+1 == len(n.children)) {
			return c.LeafAt(cursor)
		}
	}
	return nil
}

// Covering returns the deepest node whose span contains the given range.
func (n *Node) Covering(span Span) *Node {
	if span.Start < n.offset || span.End > n.offset+n.len {
		return nil
	}
	for _, c := range n.children {
		if c.len == 0 {
			continue
		}
		if found := c.Covering(span); found != nil {
			return found
		}
	}
	return n
}

// FirstChild returns the first child of the given kind.
func (n *Node) FirstChild(kind Kind) *Node {
	for _, c := range n.children {
		if c.kind == kind {
			return c
		}
	}
	return nil
}

// link wires parent pointers and offsets below n.
func (n *Node) link(parent *Node, index, offset int) {
	n.parent = parent
	n.index = index
	n.offset = offset
	for i, c := range n.children {
		c.link(n, i, offset)
		offset += c.len
	}
}

// Source is a parsed document: its text and the root of its tree.
type Source struct {
	text string
	root *Node
}

// NewSource links root and checks that it covers text exactly.
func NewSource(text string, root *Node) (*Source, error) {
	if root == nil {
		return nil, errors.New("nil syntax root")
	}
	if root.len != len(text) {
		return nil, errors.Newf("syntax tree covers %d bytes, source has %d", root.len, len(text))
	}
	root.link(nil, 0, 0)
	return &Source{text: text, root: root}, nil
}

// Parse parses markup text into a source.
func Parse(text string) *Source {
	root := newParser(text, modeMarkup).parseMarkup()
	root.link(nil, 0, 0)
	return &Source{text: text, root: root}
}

func (s *Source) Text() string { return s.text }
func (s *Source) Root() *Node  { return s.root }

// LeafAt returns the leaf at the cursor, or nil when the cursor is out of range.
func (s *Source) LeafAt(cursor int) *Node {
	if cursor < 0 || cursor > len(s.text) {
		return nil
	}
	return s.root.LeafAt(cursor)
}

// Covering returns the deepest node containing span.
func (s *Source) Covering(span Span) *Node {
	return s.root.Covering(span)
}
