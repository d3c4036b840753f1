package query

import (
	"fmt"
)

// Lexer is responsible for scanning the input string and producing tokens.
type Lexer struct {
	input    string // the entire input to tokenize
	position int    // current reading position in input
	tokens   []Token
}

// NewLexer returns a new Lexer with the given input and initializes state.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:    input,
		position: 0,
		tokens:   make([]Token, 0),
	}
}

// Tokenize processes the entire input and produces the list of tokens.
// It stops at the first character that cannot start a token.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		currentPos := l.position
		switch c := l.input[l.position]; {
		case isWhitespace(c):
			l.position++

		case c == ';':
			// comment runs to the end of the line
			for l.position < len(l.input) && l.input[l.position] != '\n' {
				l.position++
			}

		case c == '(':
			l.addToken(TokenLParen, "(", currentPos)
			l.position++

		case c == ')':
			l.addToken(TokenRParen, ")", currentPos)
			l.position++

		case c == ':':
			l.addToken(TokenColon, ":", currentPos)
			l.position++

		case isQuantifier(c):
			l.addToken(TokenQuantifier, string(c), currentPos)
			l.position++

		case c == '@':
			if err := l.lexCapture(currentPos); err != nil {
				return nil, err
			}

		case isIdentifierStart(c):
			l.lexIdent(currentPos)

		default:
			return nil, newCompileError(l.input, currentPos, fmt.Sprintf("%q", string(c)), "unexpected character")
		}
	}

	// At the end, add an EOF token to indicate we're done.
	l.addToken(TokenEOF, "", l.position)
	return l.tokens, nil
}

// lexCapture scans '@' followed by a capture name.
func (l *Lexer) lexCapture(startPos int) error {
	l.position++ // skip '@'
	start := l.position
	for l.position < len(l.input) && isNameChar(l.input[l.position]) {
		l.position++
	}
	if l.position == start || !isIdentifierStart(l.input[start]) {
		return newCompileError(l.input, startPos, `"@"`, "invalid capture: '@' must be followed by a name")
	}
	l.addToken(TokenCapture, l.input[start:l.position], startPos)
	return nil
}

// lexIdent scans an identifier. A lone '_' is the wildcard.
func (l *Lexer) lexIdent(startPos int) {
	start := l.position
	for l.position < len(l.input) && isNameChar(l.input[l.position]) {
		l.position++
	}
	word := l.input[start:l.position]
	if word == Wildcard {
		l.addToken(TokenWildcard, word, startPos)
		return
	}
	l.addToken(TokenIdent, word, startPos)
}

// addToken is a helper to append a new token to the lexer's token list.
func (l *Lexer) addToken(tokenType TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{
		Type:     tokenType,
		Value:    value,
		Position: pos,
	})
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentifierStart(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || ('0' <= c && c <= '9')
}

// names may also use '.' and '-', e.g. @function.name or (a.b)
func isNameChar(c byte) bool {
	return isIdentifierChar(c) || c == '.' || c == '-'
}
