package query

import "fmt"

// Parser consumes tokens produced by the lexer and builds a pattern tree.
type Parser struct {
	input   string
	tokens  []Token
	current int
}

// NewParser creates a new Parser instance over the tokens of input.
func NewParser(input string, tokens []Token) *Parser {
	return &Parser{
		input:   input,
		tokens:  tokens,
		current: 0,
	}
}

// Compile lexes and parses a query. The returned error is a *CompileError.
func Compile(text string) (*Pattern, error) {
	tokens, err := NewLexer(text).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(text, tokens).Parse()
}

// MustCompile is like Compile but panics if the query is invalid.
func MustCompile(text string) *Pattern {
	p, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse builds the pattern tree of a single top-level pattern.
func (p *Parser) Parse() (*Pattern, error) {
	if p.peek().Type == TokenEOF {
		return nil, p.fail(p.peek(), "empty query")
	}

	root, err := p.parsePattern()
	if err != nil {
		return nil, err
	}

	switch tok := p.peek(); tok.Type {
	case TokenEOF:
	case TokenQuantifier:
		return nil, p.fail(tok, "malformed quantifier: the top-level pattern cannot be repeated")
	case TokenRParen:
		return nil, p.fail(tok, "unbalanced parentheses: unexpected ')'")
	case TokenCapture:
		return nil, p.fail(tok, "invalid capture: a capture must directly follow the pattern it names")
	default:
		return nil, p.fail(tok, "unexpected input after the top-level pattern")
	}

	root.finalize()
	return root, nil
}

// parsePattern parses '(' kind child* ')' capture? or '_' capture?.
func (p *Parser) parsePattern() (*Pattern, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenWildcard:
		p.current++
		pat := &Pattern{Kind: Wildcard, Bare: true, pos: tok.Position}
		return pat, p.parseCapture(pat)
	case TokenLParen:
		return p.parseGroup()
	case TokenQuantifier:
		return nil, p.fail(tok, "malformed quantifier: a quantifier must follow a pattern")
	case TokenCapture:
		return nil, p.fail(tok, "invalid capture: a capture must follow a pattern")
	case TokenRParen:
		return nil, p.fail(tok, "unbalanced parentheses: unexpected ')'")
	case TokenEOF:
		return nil, p.fail(tok, "unbalanced parentheses: expected a pattern")
	default:
		return nil, p.fail(tok, "expected '(' or '_'")
	}
}

func (p *Parser) parseGroup() (*Pattern, error) {
	open := p.tokens[p.current]
	p.current++

	pat := &Pattern{pos: open.Position}
	switch tok := p.peek(); tok.Type {
	case TokenIdent, TokenWildcard:
		pat.Kind = tok.Value
		p.current++
	case TokenEOF:
		return nil, p.unclosed(open)
	default:
		return nil, p.fail(tok, "expected a node kind or '_' after '('")
	}

	for {
		tok := p.peek()
		switch tok.Type {
		case TokenRParen:
			p.current++
			return pat, p.parseCapture(pat)
		case TokenEOF:
			return nil, p.unclosed(open)
		}

		child, err := p.parseChild()
		if err != nil {
			return nil, err
		}
		pat.Children = append(pat.Children, child)
	}
}

// parseChild parses (IDENT ':')? pattern quantifier?.
func (p *Parser) parseChild() (*Child, error) {
	child := &Child{}

	if tok := p.peek(); tok.Type == TokenIdent {
		if p.peekAt(1).Type != TokenColon {
			return nil, p.fail(tok, fmt.Sprintf("expected ':' after field name %q, or '(' to start a pattern", tok.Value))
		}
		child.Field = tok.Value
		p.current += 2
		if next := p.peek(); next.Type != TokenLParen && next.Type != TokenWildcard {
			return nil, p.fail(next, fmt.Sprintf("field %q must be followed by a pattern", child.Field))
		}
	} else if tok.Type == TokenColon {
		return nil, p.fail(tok, "':' must follow a field name")
	}

	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	child.Pattern = pat

	if tok := p.peek(); tok.Type == TokenQuantifier {
		child.Quantifier = quantifiers[tok.Value[0]]
		p.current++
		switch next := p.peek(); next.Type {
		case TokenQuantifier:
			return nil, p.fail(next, "malformed quantifier: repeated quantifier")
		case TokenCapture:
			return nil, p.fail(next, "invalid capture: a capture must directly follow the pattern it names")
		}
	}
	return child, nil
}

// parseCapture attaches an optional '@name' to pat.
func (p *Parser) parseCapture(pat *Pattern) error {
	tok := p.peek()
	if tok.Type != TokenCapture {
		return nil
	}
	p.current++
	pat.Capture = tok.Value
	if next := p.peek(); next.Type == TokenCapture {
		return p.fail(next, "invalid capture: a pattern carries at most one capture")
	}
	return nil
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		return Token{Type: TokenEOF, Position: len(p.input)}
	}
	return p.tokens[p.current+n]
}

func (p *Parser) fail(tok Token, reason string) error {
	return newCompileError(p.input, tok.Position, describe(tok), reason)
}

func (p *Parser) unclosed(open Token) error {
	eof := p.peek()
	line := newCompileError(p.input, open.Position, "", "")
	return p.fail(eof, fmt.Sprintf("unbalanced parentheses: '(' at %d:%d is never closed", line.Line, line.Column))
}
