/*
Package query compiles structural query expressions into patterns that the
matching engine unifies against syntax trees.

# Overview

A query is an s-expression that mirrors the shape of the tree it should match.
Each parenthesized group names a node kind and lists patterns for the node's
children. Patterns may be qualified by a field name, repeated with a quantifier,
and labelled with a capture so the matched node is reported.

# Syntax

	pattern  := '(' kind child* ')' capture?
	          | '_' capture?
	kind     := IDENT | '_'
	child    := (IDENT ':')? pattern quantifier?
	quantifier := '*' | '+' | '?'
	capture  := '@' IDENT

Examples:

	(function_clause name: (atom)@fname)
	(call args: (expr_args _* (atom)@atomo _*))
	(tuple expr: (_)@e expr: (_)@e)

A semicolon starts a comment that runs to the end of the line.

# Token Types

  - TokenLParen, TokenRParen: group delimiters
  - TokenIdent: node kinds and field names
  - TokenWildcard: the lone '_'
  - TokenColon: separates a field name from its pattern
  - TokenCapture: '@name'
  - TokenQuantifier: '*', '+' or '?'
  - TokenEOF: end of input marker

# Compilation Rules

 1. Kinds and field names are not checked against any grammar. A kind or field
    the parser never produces simply never matches.

 2. The first offending token aborts compilation with a *CompileError that
    carries its byte offset, line and column.

 3. The top-level pattern cannot carry a quantifier.

 4. A compiled Pattern is immutable and safe for concurrent read-only use.
*/
package query
