package match

import (
	"errors"

	"github.com/gnolang/scryer/query"
	"github.com/gnolang/scryer/syntax"
)

// ErrBudgetExceeded is returned by Cursor.Err when the search performed more
// steps than allowed by WithMaxSteps.
var ErrBudgetExceeded = errors.New("match: search step budget exceeded")

// DefaultMaxSteps is the step budget used by the command line driver.
const DefaultMaxSteps = 1_000_000

// Option configures a Matches call.
type Option func(*options)

type options struct {
	maxSteps int
}

// WithMaxSteps bounds the number of search steps of one Matches call.
// Zero or a negative value means unlimited.
func WithMaxSteps(n int) Option {
	return func(o *options) {
		o.maxSteps = n
	}
}

// Cursor lazily produces the matches of a pattern over a tree.
//
//	c := match.Matches(p, root)
//	for c.Next() {
//		m := c.Match()
//		...
//	}
//	if err := c.Err(); err != nil {
//		...
//	}
type Cursor struct {
	pattern *query.Pattern
	stack   []syntax.Node
	search  *search
	current *Match
	err     error
}

// Matches returns a cursor over the matches of p in the tree rooted at root,
// in pre-order of their root nodes. A nil root has no matches.
func Matches(p *query.Pattern, root syntax.Node, opts ...Option) *Cursor {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Cursor{
		pattern: p,
		search:  &search{maxSteps: o.maxSteps},
	}
	if root != nil && p != nil {
		c.stack = []syntax.Node{root}
	}
	return c
}

// Next advances to the next match. It returns false when the tree is
// exhausted or the search failed; see Err.
func (c *Cursor) Next() bool {
	c.current = nil
	for len(c.stack) > 0 {
		n := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			c.stack = append(c.stack, children[i])
		}

		caps, ok, err := c.search.unify(c.pattern, n)
		if err != nil {
			c.err = err
			c.stack = nil
			return false
		}
		if !ok {
			continue
		}
		sortCaptures(caps)
		c.current = &Match{Root: n, Captures: caps}
		return true
	}
	return false
}

// Match returns the current match. It is valid after Next returned true.
func (c *Cursor) Match() *Match { return c.current }

// Err returns the error that stopped the cursor, if any.
func (c *Cursor) Err() error { return c.err }

// Steps returns the number of search steps performed so far.
func (c *Cursor) Steps() int { return c.search.steps }

// All collects every match of p in the tree rooted at root. On error the
// matches found before the failure are returned with it.
func All(p *query.Pattern, root syntax.Node, opts ...Option) ([]*Match, error) {
	var out []*Match
	c := Matches(p, root, opts...)
	for c.Next() {
		out = append(out, c.Match())
	}
	return out, c.Err()
}
