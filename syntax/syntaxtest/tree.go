// Package syntaxtest provides helpers and fixtures for tests that need
// syntax trees without running a real parser.
package syntaxtest

import (
	"testing"

	"github.com/gnolang/scryer/syntax"
)

// Tree builds a tree over source from an s-expression with node texts
// (see syntax.ReadSexp). It fails the test if the description is invalid.
func Tree(t testing.TB, source, sexp string) syntax.Node {
	t.Helper()
	n, err := syntax.ReadSexp([]byte(source), sexp)
	if err != nil {
		t.Fatalf("building tree: %v", err)
	}
	return n
}

// AssertKind asserts that a node has the expected kind.
func AssertKind(t testing.TB, n syntax.Node, kind string) {
	t.Helper()
	if n == nil {
		t.Fatalf("node is nil, expected kind %q", kind)
	}
	if n.Kind() != kind {
		t.Errorf("node kind = %q, want %q", n.Kind(), kind)
	}
}
