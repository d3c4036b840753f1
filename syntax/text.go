package syntax

import (
	"fmt"
	"unicode/utf8"
)

// Placeholder is reported in place of capture text that cannot be decoded.
const Placeholder = "⁈⁈⁈"

// TextDecodeError reports a node span that does not select valid text.
type TextDecodeError struct {
	Kind  string
	Span  Span
	Cause string
}

func (e *TextDecodeError) Error() string {
	return fmt.Sprintf("cannot decode text of %s at %s-%s: %s", e.Kind, e.Span.Start, e.Span.End, e.Cause)
}

// Text returns the source text covered by n.
func Text(n Node, source []byte) (string, error) {
	sp := n.Span()
	if sp.StartByte < 0 || sp.EndByte > len(source) || sp.StartByte > sp.EndByte {
		return "", &TextDecodeError{Kind: n.Kind(), Span: sp, Cause: "span out of range"}
	}
	b := source[sp.StartByte:sp.EndByte]
	if !utf8.Valid(b) {
		return "", &TextDecodeError{Kind: n.Kind(), Span: sp, Cause: "invalid UTF-8"}
	}
	return string(b), nil
}

// TextOrPlaceholder returns the text of n, or Placeholder when it cannot be
// decoded.
func TextOrPlaceholder(n Node, source []byte) string {
	s, err := Text(n, source)
	if err != nil {
		return Placeholder
	}
	return s
}
