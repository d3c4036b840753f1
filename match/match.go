// Package match runs compiled query patterns against syntax trees.
//
// Every node of the subject tree, in pre-order, is a candidate root for the
// top-level pattern. A candidate matches when its kind unifies with the
// pattern and every child group of the pattern finds an assignment of tree
// children. Each candidate contributes at most one match, the first
// assignment found by a deterministic backtracking search, so running the
// same pattern over the same tree always yields the same sequence.
package match

import (
	"sort"

	"github.com/gnolang/scryer/syntax"
)

// Capture binds a capture label to a matched node.
type Capture struct {
	Name string
	Node syntax.Node

	// pre-order index of the capturing pattern, used to order captures
	// that start at the same byte
	index int
}

// Text returns the source text of the captured node, or syntax.Placeholder
// when it cannot be decoded.
func (c Capture) Text(source []byte) string {
	return syntax.TextOrPlaceholder(c.Node, source)
}

// Match is one complete binding of a pattern against a region of a tree.
type Match struct {
	// Root is the node the top-level pattern unified with.
	Root syntax.Node
	// Captures are ordered by node start byte, then by the declaration
	// order of the capturing pattern. A label may appear several times.
	Captures []Capture
}

// Group is the list of nodes bound to one label within a match.
type Group struct {
	Name  string
	Nodes []syntax.Node
}

// Groups returns the captures grouped by label, in order of first appearance.
func (m *Match) Groups() []Group {
	var groups []Group
	byName := make(map[string]int)
	for _, c := range m.Captures {
		i, ok := byName[c.Name]
		if !ok {
			i = len(groups)
			byName[c.Name] = i
			groups = append(groups, Group{Name: c.Name})
		}
		groups[i].Nodes = append(groups[i].Nodes, c.Node)
	}
	return groups
}

// Named returns every node bound to name, in capture order.
func (m *Match) Named(name string) []syntax.Node {
	var nodes []syntax.Node
	for _, c := range m.Captures {
		if c.Name == name {
			nodes = append(nodes, c.Node)
		}
	}
	return nodes
}

func sortCaptures(caps []Capture) {
	sort.SliceStable(caps, func(i, j int) bool {
		a, b := caps[i].Node.Span().StartByte, caps[j].Node.Span().StartByte
		if a != b {
			return a < b
		}
		return caps[i].index < caps[j].index
	})
}
