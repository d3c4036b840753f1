package sitter

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnolang/scryer/syntax"
)

// Parser turns source files of one language into syntax trees. A Parser is
// not safe for concurrent use.
type Parser struct {
	lang   *Language
	parser *tree_sitter.Parser
	strict bool
}

type ParserOption func(*Parser)

// WithStrict makes Parse fail on trees that contain syntax errors. By default
// such trees are returned with their ERROR nodes.
func WithStrict(strict bool) ParserOption {
	return func(p *Parser) {
		p.strict = strict
	}
}

func NewParser(lang *Language, opts ...ParserOption) (*Parser, error) {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang.lang); err != nil {
		parser.Close()
		return nil, fmt.Errorf("setting language %s: %w", lang.Name, err)
	}
	p := &Parser{lang: lang, parser: parser}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Language returns the language the parser was built for.
func (p *Parser) Language() *Language { return p.lang }

// Parse parses source and converts the result into a syntax tree. The
// returned tree does not reference tree-sitter memory.
func (p *Parser) Parse(source []byte) (syntax.Node, error) {
	tree := p.parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s parser returned no tree", ErrParseFailed, p.lang.Name)
	}
	defer tree.Close()

	root := tree.RootNode()
	if p.strict && root.HasError() {
		return nil, fmt.Errorf("%w: source has syntax errors", ErrParseFailed)
	}
	return convert(root), nil
}

func (p *Parser) Close() {
	p.parser.Close()
}
