package query

import (
	"strings"
)

// TokenType defines different types of tokens that can be produced by the lexer.
type TokenType int

const (
	TokenLParen     TokenType = iota // '('
	TokenRParen                      // ')'
	TokenIdent                       // node kind or field name
	TokenWildcard                    // '_'
	TokenColon                       // ':'
	TokenCapture                     // '@name'
	TokenQuantifier                  // '*', '+', '?'
	TokenEOF                         // End of input
)

func (t TokenType) String() string {
	switch t {
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenIdent:
		return "identifier"
	case TokenWildcard:
		return "'_'"
	case TokenColon:
		return "':'"
	case TokenCapture:
		return "capture"
	case TokenQuantifier:
		return "quantifier"
	case TokenEOF:
		return "end of query"
	default:
		return "unknown"
	}
}

// Token represents a single lexical token with type, value, and position.
type Token struct {
	Type     TokenType // type of this token
	Value    string    // the literal string for this token; capture names without '@'
	Position int       // the starting byte offset in the query text
}

// Wildcard is the kind that matches a node of any kind.
const Wildcard = "_"

// Pattern is a compiled node pattern.
type Pattern struct {
	// Kind is the required node kind, or Wildcard.
	Kind string
	// Capture is the label bound to the matched node, or "".
	Capture string
	// Children lists the child matchers in declaration order.
	Children []*Child
	// Bare is set for a wildcard written without parentheses.
	Bare bool

	pos   int
	index int

	positional []*Child
	fields     []FieldGroup
}

// Child is a child matcher: a pattern with an optional field and quantifier.
type Child struct {
	Field      string
	Pattern    *Pattern
	Quantifier Quantifier
}

// FieldGroup holds the child matchers that address the same field, in
// declaration order.
type FieldGroup struct {
	Name     string
	Children []*Child
}

// IsWildcard reports whether the pattern accepts any node kind.
func (p *Pattern) IsWildcard() bool { return p.Kind == Wildcard }

// Position returns the byte offset of the pattern in the query text.
func (p *Pattern) Position() int { return p.pos }

// Index returns the pre-order index of the pattern within its query.
func (p *Pattern) Index() int { return p.index }

// Positional returns the fieldless child matchers in declaration order.
func (p *Pattern) Positional() []*Child { return p.positional }

// FieldGroups returns the field-qualified child matchers grouped by field,
// ordered by the first declaration of each field.
func (p *Pattern) FieldGroups() []FieldGroup { return p.fields }

// CaptureNames returns the distinct capture labels of the pattern tree in
// first-declaration order.
func (p *Pattern) CaptureNames() []string {
	var names []string
	seen := make(map[string]bool)
	p.walk(func(q *Pattern) {
		if q.Capture != "" && !seen[q.Capture] {
			seen[q.Capture] = true
			names = append(names, q.Capture)
		}
	})
	return names
}

// walk visits the pattern tree in pre-order.
func (p *Pattern) walk(fn func(*Pattern)) {
	stack := []*Pattern{p}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(q)
		for i := len(q.Children) - 1; i >= 0; i-- {
			stack = append(stack, q.Children[i].Pattern)
		}
	}
}

// String renders the pattern in canonical query syntax.
func (p *Pattern) String() string {
	var sb strings.Builder
	p.write(&sb)
	return sb.String()
}

func (p *Pattern) write(sb *strings.Builder) {
	if p.Bare {
		sb.WriteString(Wildcard)
	} else {
		sb.WriteByte('(')
		sb.WriteString(p.Kind)
		for _, c := range p.Children {
			sb.WriteByte(' ')
			if c.Field != "" {
				sb.WriteString(c.Field)
				sb.WriteString(": ")
			}
			c.Pattern.write(sb)
			sb.WriteString(c.Quantifier.String())
		}
		sb.WriteByte(')')
	}
	if p.Capture != "" {
		sb.WriteByte('@')
		sb.WriteString(p.Capture)
	}
}

// finalize numbers the patterns in pre-order and partitions the child
// matchers of every pattern into the positional group and field groups.
func (p *Pattern) finalize() {
	next := 0
	p.walk(func(q *Pattern) {
		q.index = next
		next++
		q.positional = nil
		q.fields = nil
		byField := make(map[string]int)
		for _, c := range q.Children {
			if c.Field == "" {
				q.positional = append(q.positional, c)
				continue
			}
			i, ok := byField[c.Field]
			if !ok {
				i = len(q.fields)
				byField[c.Field] = i
				q.fields = append(q.fields, FieldGroup{Name: c.Field})
			}
			q.fields[i].Children = append(q.fields[i].Children, c)
		}
	})
}
