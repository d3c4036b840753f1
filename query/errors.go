package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuery is wrapped by every CompileError.
var ErrInvalidQuery = errors.New("invalid query")

// CompileError identifies the first offending token of a query and why it
// was rejected.
type CompileError struct {
	Query  string
	Offset int    // byte offset of the offending token
	Line   int    // 1-based
	Column int    // 1-based, in bytes
	Token  string // offending token text, or "end of query"
	Reason string
}

func newCompileError(input string, offset int, token, reason string) *CompileError {
	if offset > len(input) {
		offset = len(input)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &CompileError{
		Query:  input,
		Offset: offset,
		Line:   line,
		Column: col,
		Token:  token,
		Reason: reason,
	}
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid query at %d:%d near %s: %s", e.Line, e.Column, e.Token, e.Reason)
}

func (e *CompileError) Unwrap() error { return ErrInvalidQuery }

// Snippet returns the offending query line followed by a caret line pointing
// at the offending token.
func (e *CompileError) Snippet() string {
	lines := strings.Split(e.Query, "\n")
	if e.Line-1 >= len(lines) {
		return ""
	}
	line := lines[e.Line-1]
	return line + "\n" + strings.Repeat(" ", e.Column-1) + "^"
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of query"
	case TokenCapture:
		return fmt.Sprintf("%q", "@"+tok.Value)
	default:
		return fmt.Sprintf("%q", tok.Value)
	}
}
