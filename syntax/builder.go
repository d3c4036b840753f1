package syntax

import "sort"

// Builder creates nodes whose points are derived from byte offsets into a
// single source buffer.
type Builder struct {
	src        []byte
	lineStarts []int
}

// NewBuilder indexes the line starts of src.
func NewBuilder(src []byte) *Builder {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Builder{src: src, lineStarts: starts}
}

// Source returns the buffer the builder indexes.
func (b *Builder) Source() []byte { return b.src }

// Point converts a byte offset into a zero-based row/column point.
// Offsets past the end of the source are clamped.
func (b *Builder) Point(offset int) Point {
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.src) {
		offset = len(b.src)
	}
	row := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1
	return Point{Row: row, Column: offset - b.lineStarts[row]}
}

// Span returns the span covering src[start:end].
func (b *Builder) Span(start, end int) Span {
	return Span{
		StartByte: start,
		EndByte:   end,
		Start:     b.Point(start),
		End:       b.Point(end),
	}
}

// Node builds a node covering src[start:end].
func (b *Builder) Node(kind string, start, end int, children ...Child) Node {
	return NewNode(kind, b.Span(start, end), children...)
}
