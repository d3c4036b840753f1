package syntax

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Sexp renders n in the s-expression notation tree-sitter uses:
// each node as "(kind ...children)" with field-qualified children
// prefixed by "field: ".
func Sexp(n Node) string {
	var sb strings.Builder
	writeSexp(&sb, n)
	return sb.String()
}

func writeSexp(sb *strings.Builder, n Node) {
	sb.WriteByte('(')
	sb.WriteString(n.Kind())
	for i, c := range n.Children() {
		sb.WriteByte(' ')
		if f := FieldName(n, i); f != "" {
			sb.WriteString(f)
			sb.WriteString(": ")
		}
		writeSexp(sb, c)
	}
	sb.WriteByte(')')
}

// ReadSexp builds a tree over source from an s-expression description.
//
// The notation is the one Sexp prints, extended with an optional quoted
// string after the kind giving the node's text:
//
//	(call expr: (atom "bah") args: (expr_args "(1, x)" args: (integer "1") args: (atom "x")))
//
// Node text is located by searching source forward from the end of the previous
// sibling (or the start of the parent). A node without text spans from its first
// child's start to its last child's end, or is empty at the current offset when
// it has no children.
func ReadSexp(source []byte, sexp string) (Node, error) {
	r := &sexpReader{
		input:   sexp,
		source:  source,
		builder: NewBuilder(source),
	}
	n, _, err := r.node(0)
	if err != nil {
		return nil, err
	}
	r.skipSpace()
	if r.pos < len(r.input) {
		return nil, r.errorf("unexpected trailing input %q", r.input[r.pos:])
	}
	return n, nil
}

type sexpReader struct {
	input   string
	pos     int
	source  []byte
	builder *Builder
}

func (r *sexpReader) errorf(format string, args ...any) error {
	return fmt.Errorf("sexp offset %d: %s", r.pos, fmt.Sprintf(format, args...))
}

func (r *sexpReader) skipSpace() {
	for r.pos < len(r.input) && isSexpSpace(r.input[r.pos]) {
		r.pos++
	}
}

// node reads one parenthesized node whose layout starts at cursor and
// returns the node together with the offset just past it.
func (r *sexpReader) node(cursor int) (Node, int, error) {
	r.skipSpace()
	if r.pos >= len(r.input) || r.input[r.pos] != '(' {
		return nil, 0, r.errorf("expected '('")
	}
	r.pos++
	kind := r.word()
	if kind == "" {
		return nil, 0, r.errorf("expected node kind")
	}

	start, end := cursor, cursor
	hasText := false
	r.skipSpace()
	if r.pos < len(r.input) && r.input[r.pos] == '"' {
		text, err := r.quoted()
		if err != nil {
			return nil, 0, err
		}
		idx := bytes.Index(r.source[cursor:], []byte(text))
		if idx < 0 {
			return nil, 0, r.errorf("text %q of %s not found after offset %d", text, kind, cursor)
		}
		start = cursor + idx
		end = start + len(text)
		hasText = true
	}

	var children []Child
	inner := start
	for {
		r.skipSpace()
		if r.pos >= len(r.input) {
			return nil, 0, r.errorf("unterminated node %s", kind)
		}
		if r.input[r.pos] == ')' {
			r.pos++
			break
		}
		field := ""
		if r.input[r.pos] != '(' {
			field = r.word()
			if field == "" || r.pos >= len(r.input) || r.input[r.pos] != ':' {
				return nil, 0, r.errorf("expected field name or '(' in %s", kind)
			}
			r.pos++
		}
		child, next, err := r.node(inner)
		if err != nil {
			return nil, 0, err
		}
		if !hasText && len(children) == 0 {
			start = child.Span().StartByte
		}
		children = append(children, Child{Field: field, Node: child})
		inner = next
	}
	if !hasText {
		if len(children) > 0 {
			end = inner
		} else {
			end = start
		}
	}
	return r.builder.Node(kind, start, end, children...), end, nil
}

func (r *sexpReader) word() string {
	begin := r.pos
	for r.pos < len(r.input) {
		c := r.input[r.pos]
		if isSexpSpace(c) || c == '(' || c == ')' || c == ':' || c == '"' {
			break
		}
		r.pos++
	}
	return r.input[begin:r.pos]
}

func (r *sexpReader) quoted() (string, error) {
	begin := r.pos
	r.pos++
	for r.pos < len(r.input) {
		switch r.input[r.pos] {
		case '\\':
			r.pos += 2
			continue
		case '"':
			r.pos++
			s, err := strconv.Unquote(r.input[begin:r.pos])
			if err != nil {
				return "", r.errorf("bad string literal: %v", err)
			}
			return s, nil
		}
		r.pos++
	}
	return "", r.errorf("unterminated string literal")
}

func isSexpSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
