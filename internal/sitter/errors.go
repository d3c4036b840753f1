package sitter

import "errors"

var (
	// ErrGrammarNotFound is returned when no compiled-in grammar and no shared
	// library in the trusted directories provides the requested language.
	ErrGrammarNotFound = errors.New("grammar not found")
	// ErrInvalidGrammarName is returned for names that cannot name a grammar
	// library.
	ErrInvalidGrammarName = errors.New("invalid grammar name")
	// ErrParseFailed is returned when a file cannot be turned into a tree.
	ErrParseFailed = errors.New("parse failed")
)
