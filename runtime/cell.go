package runtime

import "fmt"

// CellRef is the identity of a heap cell: its index into the heap. CellRefs are
// not integers, do not do arithmetic on them.
type CellRef int32

// Sentinel references. Both lie outside of the addressable heap range.
const (
	Nil  CellRef = -1 // empty list, false
	True CellRef = -2 // canonical true
)

// IsSentinel is a predicate: is r one of Nil or True?
func (r CellRef) IsSentinel() bool {
	return r == Nil || r == True
}

func (r CellRef) String() string {
	switch r {
	case Nil:
		return "#nil"
	case True:
		return "#t"
	}
	return fmt.Sprintf("#%d", int32(r))
}

// Tag is the variant of a cell.
type Tag int8

// Cell variants. NilTag and TrueTag are reported for the sentinels only, no cell
// on the heap ever carries them.
const (
	NilTag Tag = iota
	TrueTag
	NumberTag
	ConsTag
	SymbolTag
	ClosureTag
)

func (t Tag) String() string {
	switch t {
	case NilTag:
		return "nil"
	case TrueTag:
		return "t"
	case NumberTag:
		return "number"
	case ConsTag:
		return "cons"
	case SymbolTag:
		return "symbol"
	case ClosureTag:
		return "closure"
	}
	return fmt.Sprintf("tag(%d)", int8(t))
}

// cell is one fixed-size slot of the heap.
//
//    Number  : num
//    Cons    : first, rest
//    Symbol  : sym
//    Closure : first = body, rest = defining environment
//
// Free cells are empty conses, linked through rest.
type cell struct {
	tag    Tag
	marked bool // only set during a collection
	first  CellRef
	rest   CellRef
	num    int64
	sym    *Symbol
}

func emptyCell(rest CellRef) cell {
	return cell{tag: ConsTag, first: Nil, rest: rest}
}
