package runtime

import (
	"math"
)

// Heap is a fixed-capacity arena of tagged cells with an intrusive free list.
// A heap is not safe for concurrent use; it belongs to exactly one interpreter.
type Heap struct {
	cells       []cell
	avail       CellRef // head of the free list
	navail      int     // length of the free list
	roots       *RootStack
	symbols     *SymbolTable
	collections int
	reclaimed   int // cells reclaimed by the most recent collection
}

// Stats is a snapshot of heap usage.
type Stats struct {
	Size          int // total cells
	Free          int // cells on the free list
	Used          int // Size - Free
	Collections   int // collections run so far
	LastReclaimed int // cells reclaimed by the most recent collection
	Roots         int // current depth of the root stack
}

// NewHeap creates a heap of size cells. If size is not positive, the configured
// heap size will be used. Symbol cells intern their names in symbols; if symbols
// is nil, the heap creates its own symbol table.
//
func NewHeap(size int, symbols *SymbolTable) *Heap {
	if size <= 0 {
		size = ConfiguredHeapSize()
	}
	if size > math.MaxInt32 {
		size = math.MaxInt32
	}
	if symbols == nil {
		symbols = NewSymbolTable()
	}
	h := &Heap{
		cells:   make([]cell, size),
		symbols: symbols,
	}
	h.roots = newRootStack(h)
	for i := range h.cells {
		h.cells[i] = emptyCell(CellRef(i + 1))
	}
	h.cells[size-1].rest = Nil
	h.avail = 0
	h.navail = size
	tracer().Debugf("created heap of %d cells", size)
	return h
}

// Size returns the capacity of the heap in cells.
func (h *Heap) Size() int {
	return len(h.cells)
}

// Free returns the number of cells on the free list.
func (h *Heap) Free() int {
	return h.navail
}

// Collections returns the number of collections run so far.
func (h *Heap) Collections() int {
	return h.collections
}

// Roots returns the root stack of the heap.
func (h *Heap) Roots() *RootStack {
	return h.roots
}

// Symbols returns the symbol table the heap interns symbol names in.
func (h *Heap) Symbols() *SymbolTable {
	return h.symbols
}

// Stats returns current usage numbers.
func (h *Heap) Stats() Stats {
	return Stats{
		Size:          len(h.cells),
		Free:          h.navail,
		Used:          len(h.cells) - h.navail,
		Collections:   h.collections,
		LastReclaimed: h.reclaimed,
		Roots:         h.roots.Depth(),
	}
}

// Valid is a predicate: is ref a sentinel or inside the heap?
func (h *Heap) Valid(ref CellRef) bool {
	return ref.IsSentinel() || (ref >= 0 && int(ref) < len(h.cells))
}

// --- Allocation ------------------------------------------------------------

// allocate pops the head of the free list. If the free list is empty, exactly
// one collection is run. If the collection does not reclaim anything, the heap
// is exhausted, which is fatal.
//
// Callers are responsible for protecting every cell reference they hold.
func (h *Heap) allocate() CellRef {
	if h.avail == Nil {
		tracer().Debugf("free list exhausted, %d roots", h.roots.Depth())
		if h.Collect() == 0 {
			Panic("allocate", Nil, ErrHeapExhausted, "all %d cells are live", len(h.cells))
		}
	}
	ref := h.avail
	c := &h.cells[ref]
	h.avail = c.rest
	*c = emptyCell(Nil)
	h.navail--
	return ref
}

func (h *Heap) checkRef(op string, ref CellRef) {
	if !h.Valid(ref) {
		Panic(op, ref, ErrBadRef, "heap size is %d", len(h.cells))
	}
}

// MakeNumber creates a number cell.
func (h *Heap) MakeNumber(n int64) CellRef {
	ref := h.allocate()
	c := &h.cells[ref]
	c.tag = NumberTag
	c.num = n
	return ref
}

// MakeCons creates a pair (a . b). a and b are protected during allocation.
func (h *Heap) MakeCons(a, b CellRef) CellRef {
	h.checkRef("cons", a)
	h.checkRef("cons", b)
	frame := h.EnterFrame("cons")
	defer frame.Leave()
	frame.Protect(a)
	frame.Protect(b)
	ref := h.allocate()
	c := &h.cells[ref]
	c.first = a
	c.rest = b
	return ref
}

// MakeSymbol interns name and creates a symbol cell for it.
func (h *Heap) MakeSymbol(name string) CellRef {
	return h.MakeSymbolRef(h.symbols.Intern(name))
}

// MakeSymbolRef creates a symbol cell referencing an already interned symbol.
func (h *Heap) MakeSymbolRef(sym *Symbol) CellRef {
	ref := h.allocate()
	c := &h.cells[ref]
	c.tag = SymbolTag
	c.sym = sym
	return ref
}

// MakeClosure creates a closure cell. body is a cons structure (params . exprs),
// env is the defining environment. Both are protected during allocation.
func (h *Heap) MakeClosure(body, env CellRef) CellRef {
	h.checkRef("closure", body)
	h.checkRef("closure", env)
	frame := h.EnterFrame("closure")
	defer frame.Leave()
	frame.Protect(body)
	frame.Protect(env)
	ref := h.allocate()
	c := &h.cells[ref]
	c.tag = ClosureTag
	c.first = body
	c.rest = env
	return ref
}

// --- Accessors -------------------------------------------------------------

// Tag returns the variant of a cell. For the sentinels it returns NilTag and
// TrueTag.
func (h *Heap) Tag(ref CellRef) Tag {
	switch ref {
	case Nil:
		return NilTag
	case True:
		return TrueTag
	}
	h.checkRef("tag", ref)
	return h.cells[ref].tag
}

func (h *Heap) typed(op string, ref CellRef, tag Tag) *cell {
	if t := h.Tag(ref); t != tag {
		Panic(op, ref, ErrTagMismatch, "expected %s, is %s", tag, t)
	}
	return &h.cells[ref]
}

// IsCons is a predicate: is ref a pair? Nil is not a pair.
func (h *Heap) IsCons(ref CellRef) bool {
	return h.Tag(ref) == ConsTag
}

// IsAtom is a predicate: is ref anything else than a pair?
func (h *Heap) IsAtom(ref CellRef) bool {
	return h.Tag(ref) != ConsTag
}

// IsNumber is a predicate.
func (h *Heap) IsNumber(ref CellRef) bool {
	return h.Tag(ref) == NumberTag
}

// IsSymbol is a predicate.
func (h *Heap) IsSymbol(ref CellRef) bool {
	return h.Tag(ref) == SymbolTag
}

// IsClosure is a predicate.
func (h *Heap) IsClosure(ref CellRef) bool {
	return h.Tag(ref) == ClosureTag
}

// First returns the first part of a pair.
func (h *Heap) First(ref CellRef) CellRef {
	return h.typed("first", ref, ConsTag).first
}

// Rest returns the rest part of a pair.
func (h *Heap) Rest(ref CellRef) CellRef {
	return h.typed("rest", ref, ConsTag).rest
}

// SetFirst replaces the first part of a pair.
func (h *Heap) SetFirst(ref, val CellRef) {
	h.checkRef("set-first", val)
	h.typed("set-first", ref, ConsTag).first = val
}

// SetRest replaces the rest part of a pair.
func (h *Heap) SetRest(ref, val CellRef) {
	h.checkRef("set-rest", val)
	h.typed("set-rest", ref, ConsTag).rest = val
}

// Value returns the integer of a number cell.
func (h *Heap) Value(ref CellRef) int64 {
	return h.typed("value", ref, NumberTag).num
}

// Symbol returns the canonical symbol of a symbol cell.
func (h *Heap) Symbol(ref CellRef) *Symbol {
	return h.typed("symbol", ref, SymbolTag).sym
}

// Body returns the code of a closure, a cons structure (params . exprs).
func (h *Heap) Body(ref CellRef) CellRef {
	return h.typed("body", ref, ClosureTag).first
}

// Environment returns the defining environment of a closure.
func (h *Heap) Environment(ref CellRef) CellRef {
	return h.typed("environment", ref, ClosureTag).rest
}
