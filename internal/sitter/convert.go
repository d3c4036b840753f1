package sitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnolang/scryer/syntax"
)

type frame struct {
	kind     string
	field    string
	span     syntax.Span
	children []syntax.Child
}

func point(p tree_sitter.Point) syntax.Point {
	return syntax.Point{Row: int(p.Row), Column: int(p.Column)}
}

// convert copies the named, non-extra nodes of a tree-sitter tree into an
// immutable syntax tree, keeping the field name of every child. Anonymous
// tokens and extras such as comments are dropped. The walk is iterative so
// deeply nested sources do not grow the goroutine stack.
func convert(root *tree_sitter.Node) syntax.Node {
	cursor := root.Walk()
	defer cursor.Close()

	stack := []*frame{{
		kind: root.Kind(),
		span: syntax.Span{
			StartByte: int(root.StartByte()),
			EndByte:   int(root.EndByte()),
			Start:     point(root.StartPosition()),
			End:       point(root.EndPosition()),
		},
	}}

	var out syntax.Node
	// finish builds the top frame's node and hands it to its parent. It
	// reports whether the root is done.
	finish := func() bool {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := syntax.NewNode(f.kind, f.span, f.children...)
		if len(stack) == 0 {
			out = n
			return true
		}
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, syntax.Child{Field: f.field, Node: n})
		return false
	}

	entered := true
	for {
		if !entered || !cursor.GotoFirstChild() {
			if entered && finish() {
				return out
			}
			for !cursor.GotoNextSibling() {
				if !cursor.GotoParent() || finish() {
					return out
				}
			}
		}

		n := cursor.Node()
		entered = n.IsNamed() && !n.IsExtra()
		if !entered {
			continue
		}
		stack = append(stack, &frame{
			kind:  n.Kind(),
			field: cursor.FieldName(),
			span: syntax.Span{
				StartByte: int(n.StartByte()),
				EndByte:   int(n.EndByte()),
				Start:     point(n.StartPosition()),
				End:       point(n.EndPosition()),
			},
		})
	}
}
