// Package syntax defines the concrete syntax tree consumed by the matching engine.
//
// A tree is an immutable, ordered tree of typed nodes. Each node has a kind, a
// byte/point span into the source it was parsed from, an ordered list of children
// and optional named fields selecting a subset of those children by role. Any
// parser can feed the engine by implementing Node; Tree-shaped values built with
// NewNode or Builder are the in-memory implementation used by the tree-sitter
// adapter and by tests.
package syntax

import "fmt"

// Point is a zero-based row/column position. Columns count bytes.
type Point struct {
	Row    int
	Column int
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// Span locates a node in its source, as byte offsets and points.
type Span struct {
	StartByte int
	EndByte   int
	Start     Point
	End       Point
}

// Len returns the number of source bytes covered by the span.
func (s Span) Len() int { return s.EndByte - s.StartByte }

// Node is the capability set the matching engine needs from a tree node.
//
// Children returns the ordered child list; callers must not modify it.
// Field returns the indexes into Children of the children playing the given
// role, in tree order, or nil when the node has no such field.
type Node interface {
	Kind() string
	Children() []Node
	Field(name string) []int
	Span() Span
}

// Child is a node together with the field name it plays under its parent.
// Field is empty for children without a role.
type Child struct {
	Field string
	Node  Node
}

// Positional returns a Child without a field name.
func Positional(n Node) Child { return Child{Node: n} }

// Named returns a Child playing the given field role.
func Named(field string, n Node) Child { return Child{Field: field, Node: n} }

type element struct {
	kind     string
	span     Span
	children []Node
	names    []string
	fields   map[string][]int
}

var _ Node = (*element)(nil)

// NewNode builds an immutable node. The children slice is copied.
func NewNode(kind string, span Span, children ...Child) Node {
	e := &element{
		kind: kind,
		span: span,
	}
	if len(children) == 0 {
		return e
	}
	e.children = make([]Node, len(children))
	e.names = make([]string, len(children))
	for i, c := range children {
		e.children[i] = c.Node
		e.names[i] = c.Field
		if c.Field == "" {
			continue
		}
		if e.fields == nil {
			e.fields = make(map[string][]int)
		}
		e.fields[c.Field] = append(e.fields[c.Field], i)
	}
	return e
}

func (e *element) Kind() string            { return e.kind }
func (e *element) Children() []Node        { return e.children }
func (e *element) Span() Span              { return e.span }
func (e *element) Field(name string) []int { return e.fields[name] }

// FieldName returns the field name of the i-th child of n, or "" when the
// child plays no role. It works for any Node implementation.
func FieldName(n Node, i int) string {
	if e, ok := n.(*element); ok {
		if i < 0 || i >= len(e.names) {
			return ""
		}
		return e.names[i]
	}
	return fieldNameSlow(n, i)
}

// fieldNameSlow recovers a child's field by scanning the node's fields.
// Node does not enumerate its field names, so foreign implementations may
// expose them through FieldNamer.
func fieldNameSlow(n Node, i int) string {
	fn, ok := n.(FieldNamer)
	if !ok {
		return ""
	}
	for _, name := range fn.FieldNames() {
		for _, idx := range n.Field(name) {
			if idx == i {
				return name
			}
		}
	}
	return ""
}

// FieldNamer is implemented by nodes that can list the field names they use.
type FieldNamer interface {
	FieldNames() []string
}

// FieldNames lists the distinct field names of e in first-child order.
func (e *element) FieldNames() []string {
	var out []string
	seen := make(map[string]bool, len(e.fields))
	for _, name := range e.names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
