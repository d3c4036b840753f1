package match

import (
	"github.com/gnolang/scryer/query"
	"github.com/gnolang/scryer/syntax"
)

// search holds the state shared by all unifications of one cursor.
type search struct {
	maxSteps int
	steps    int
}

func (s *search) step() error {
	s.steps++
	if s.maxSteps > 0 && s.steps > s.maxSteps {
		return ErrBudgetExceeded
	}
	return nil
}

// unify reports whether p matches n and returns the captures of the first
// solution. Recursion depth is bounded by the depth of the pattern, not of
// the tree.
//
// Fieldless matchers are placed against the whole child list, which they
// must consume. A pattern mixing fieldless and field matchers is one
// sequence in declaration order over the child list; field matchers take
// only children of their field, and children that carry a field may be
// passed over. A pattern with field matchers only matches each field's
// children as an ordered subsequence and ignores everything else.
func (s *search) unify(p *query.Pattern, n syntax.Node) ([]Capture, bool, error) {
	if err := s.step(); err != nil {
		return nil, false, err
	}
	if !p.IsWildcard() && p.Kind != n.Kind() {
		return nil, false, nil
	}

	var caps []Capture
	if p.Capture != "" {
		caps = append(caps, Capture{Name: p.Capture, Node: n, index: p.Index()})
	}
	if len(p.Children) == 0 {
		return caps, true, nil
	}

	children := n.Children()
	positional, fields := p.Positional(), p.FieldGroups()
	switch {
	case len(fields) == 0:
		sub, ok, err := s.sequence(positional, children, nil, nil)
		if err != nil || !ok {
			return nil, false, err
		}
		caps = append(caps, sub...)

	case len(positional) == 0:
		for _, g := range fields {
			nodes := fieldNodes(n, children, g.Name)
			sub, ok, err := s.sequence(g.Children, nodes, nil, everyNode(len(nodes)))
			if err != nil || !ok {
				return nil, false, err
			}
			caps = append(caps, sub...)
		}

	default:
		names := make([]string, len(children))
		skippable := make([]bool, len(children))
		for i := range children {
			names[i] = syntax.FieldName(n, i)
			skippable[i] = names[i] != ""
		}
		sub, ok, err := s.sequence(p.Children, children, names, skippable)
		if err != nil || !ok {
			return nil, false, err
		}
		caps = append(caps, sub...)
	}
	return caps, true, nil
}

func fieldNodes(n syntax.Node, children []syntax.Node, field string) []syntax.Node {
	idx := n.Field(field)
	if len(idx) == 0 {
		return nil
	}
	nodes := make([]syntax.Node, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < len(children) {
			nodes = append(nodes, children[i])
		}
	}
	return nodes
}

func everyNode(n int) []bool {
	all := make([]bool, n)
	for i := range all {
		all[i] = true
	}
	return all
}

// outcome of unifying one item with one node.
type outcome struct {
	done bool
	ok   bool
	caps []Capture
}

// choices of a search state, tried in this order
const (
	chooseFinish = iota // item is done, move to the next one
	chooseTake          // item consumes the node
	chooseSkip          // node is passed over
	exhausted
)

// state is item i at node j having consumed count nodes. count is capped
// at 1: beyond that every count behaves alike for the bounds of '*' and '+'.
type state struct {
	i, j, count int
	next        int
	took        bool
}

// seq is the search of one child sequence: the items consume the nodes in
// order, each between its minimum and maximum count, and every node not
// marked skippable must be consumed.
type seq struct {
	s     *search
	items []*query.Child
	nodes []syntax.Node
	// names, when set, restricts a field item to nodes of its field.
	names     []string
	skippable []bool

	min, max []int
	// minRest[i] is the fewest nodes items[i:] consume.
	minRest []int

	memo   []outcome
	failed map[[3]int]bool
}

// sequence finds the first assignment of nodes to items. Each item tries
// to finish before it consumes another node, so counts grow from the
// minimum, and nodes are consumed before they are skipped. The search is
// depth first with an explicit stack and backtracks until a solution is
// found or none exists. States that failed once are not tried again.
func (s *search) sequence(items []*query.Child, nodes []syntax.Node, names []string, skippable []bool) ([]Capture, bool, error) {
	k, n := len(items), len(nodes)
	q := &seq{
		s:         s,
		items:     items,
		nodes:     nodes,
		names:     names,
		skippable: skippable,
		min:       make([]int, k),
		max:       make([]int, k),
		minRest:   make([]int, k+1),
		memo:      make([]outcome, k*n),
		failed:    make(map[[3]int]bool),
	}
	for i, it := range items {
		q.min[i], q.max[i] = it.Quantifier.Bounds()
	}
	for i := k - 1; i >= 0; i-- {
		q.minRest[i] = q.minRest[i+1] + q.min[i]
	}
	if q.minRest[0] > n {
		return nil, false, nil
	}

	stack := []state{{}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.i == k && top.j == n {
			return q.collect(stack), true, nil
		}
		if top.next == exhausted {
			q.failed[q.key(*top)] = true
			stack = stack[:len(stack)-1]
			continue
		}

		if err := s.step(); err != nil {
			return nil, false, err
		}
		choice := top.next
		top.next++
		child, ok, err := q.follow(*top, choice)
		if err != nil {
			return nil, false, err
		}
		if !ok || q.failed[q.key(child)] || !q.reachable(child) {
			continue
		}
		top.took = choice == chooseTake
		stack = append(stack, child)
	}
	return nil, false, nil
}

// follow returns the state reached from st by choice.
func (q *seq) follow(st state, choice int) (state, bool, error) {
	k, n := len(q.items), len(q.nodes)
	switch choice {
	case chooseFinish:
		if st.i < k && st.count >= q.min[st.i] {
			return state{i: st.i + 1, j: st.j}, true, nil
		}
	case chooseTake:
		if st.i == k || st.j == n {
			return state{}, false, nil
		}
		if q.max[st.i] != query.Unbounded && st.count >= q.max[st.i] {
			return state{}, false, nil
		}
		ok, err := q.unify(st.i, st.j)
		if err != nil || !ok {
			return state{}, false, err
		}
		return state{i: st.i, j: st.j + 1, count: 1}, true, nil
	case chooseSkip:
		if st.j < n && q.skippable != nil && q.skippable[st.j] {
			return state{i: st.i, j: st.j + 1, count: st.count}, true, nil
		}
	}
	return state{}, false, nil
}

// reachable reports whether enough nodes remain for the items still due.
func (q *seq) reachable(st state) bool {
	if st.i == len(q.items) {
		return true
	}
	due := q.minRest[st.i+1]
	if st.count < q.min[st.i] {
		due += q.min[st.i] - st.count
	}
	return len(q.nodes)-st.j >= due
}

func (q *seq) key(st state) [3]int {
	return [3]int{st.i, st.j, st.count}
}

func (q *seq) unify(i, j int) (bool, error) {
	if f := q.items[i].Field; q.names != nil && f != "" && q.names[j] != f {
		return false, nil
	}
	m := &q.memo[i*len(q.nodes)+j]
	if !m.done {
		caps, ok, err := q.s.unify(q.items[i].Pattern, q.nodes[j])
		if err != nil {
			return false, err
		}
		*m = outcome{done: true, ok: ok, caps: caps}
	}
	return m.ok, nil
}

// collect gathers the captures along the path of the solution.
func (q *seq) collect(path []state) []Capture {
	var caps []Capture
	for _, st := range path[:len(path)-1] {
		if st.took {
			caps = append(caps, q.memo[st.i*len(q.nodes)+st.j].caps...)
		}
	}
	return caps
}
