package celisp

import "fmt"

// --- Source positions ------------------------------------------------------

// Position is a location in an input stream. Lines and columns are 1-based,
// Offset counts runes from the start of the stream.
type Position struct {
	Line   int
	Column int
	Offset uint64
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid is a predicate: has the position been set?
func (p Position) IsValid() bool {
	return p.Line > 0
}

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a run of input. Readers track the span
// of every diagnostic they report. A span denotes a start position and the
// position just behind the end.
type Span [2]Position // (x…y)

// From returns the start position of a span.
func (s Span) From() Position {
	return s[0]
}

// To returns the end position of a span.
func (s Span) To() Position {
	return s[1]
}

// Len returns the length of (x…y) in runes.
func (s Span) Len() uint64 {
	return s[1].Offset - s[0].Offset
}

func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend returns a span covering both s and other.
func (s Span) Extend(other Span) Span {
	if s.IsNull() {
		return other
	}
	if other[0].Offset < s[0].Offset {
		s[0] = other[0]
	}
	if other[1].Offset > s[1].Offset {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%s…%s)", s[0], s[1])
}
