package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_Tokenize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "empty input",
			input: "",
			expected: []Token{
				{Type: TokenEOF, Value: "", Position: 0},
			},
		},
		{
			name:  "simple pattern with capture",
			input: "(atom)@a",
			expected: []Token{
				{Type: TokenLParen, Value: "(", Position: 0},
				{Type: TokenIdent, Value: "atom", Position: 1},
				{Type: TokenRParen, Value: ")", Position: 5},
				{Type: TokenCapture, Value: "a", Position: 6},
				{Type: TokenEOF, Value: "", Position: 8},
			},
		},
		{
			name:  "dotted kind and dashed field",
			input: "(a.b f-g: _)",
			expected: []Token{
				{Type: TokenLParen, Value: "(", Position: 0},
				{Type: TokenIdent, Value: "a.b", Position: 1},
				{Type: TokenIdent, Value: "f-g", Position: 5},
				{Type: TokenColon, Value: ":", Position: 8},
				{Type: TokenWildcard, Value: "_", Position: 10},
				{Type: TokenRParen, Value: ")", Position: 11},
				{Type: TokenEOF, Value: "", Position: 12},
			},
		},
		{
			name:  "field, wildcard and quantifier",
			input: "(call args: _*)",
			expected: []Token{
				{Type: TokenLParen, Value: "(", Position: 0},
				{Type: TokenIdent, Value: "call", Position: 1},
				{Type: TokenIdent, Value: "args", Position: 6},
				{Type: TokenColon, Value: ":", Position: 10},
				{Type: TokenWildcard, Value: "_", Position: 12},
				{Type: TokenQuantifier, Value: "*", Position: 13},
				{Type: TokenRParen, Value: ")", Position: 14},
				{Type: TokenEOF, Value: "", Position: 15},
			},
		},
		{
			name:  "identifier starting with underscore",
			input: "_x",
			expected: []Token{
				{Type: TokenIdent, Value: "_x", Position: 0},
				{Type: TokenEOF, Value: "", Position: 2},
			},
		},
		{
			name:  "comment is skipped",
			input: "; calls only\n(call)",
			expected: []Token{
				{Type: TokenLParen, Value: "(", Position: 13},
				{Type: TokenIdent, Value: "call", Position: 14},
				{Type: TokenRParen, Value: ")", Position: 18},
				{Type: TokenEOF, Value: "", Position: 19},
			},
		},
		{
			name:  "dotted capture name",
			input: "@function.name",
			expected: []Token{
				{Type: TokenCapture, Value: "function.name", Position: 0},
				{Type: TokenEOF, Value: "", Position: 14},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tokens, err := NewLexer(tt.input).Tokenize()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestLexer_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		input  string
		offset int
		reason string
	}{
		{"bare at sign", "(atom)@", 6, "invalid capture"},
		{"at sign followed by digit", "(atom)@1", 6, "invalid capture"},
		{"string literal", `(atom "x")`, 6, "unexpected character"},
		{"bracket", "[(a)]", 0, "unexpected character"},
		{"name starting with a dot", "(.a)", 1, "unexpected character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLexer(tt.input).Tokenize()
			require.Error(t, err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.offset, ce.Offset)
			assert.Contains(t, ce.Reason, tt.reason)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}
