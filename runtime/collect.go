package runtime

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/schuko/tracing"
)

// Collect runs a mark-and-sweep pass and returns the number of free cells
// afterwards. It is invoked by the allocator, but clients may call it at any time.
//
// Every cell reachable from the root stack survives unchanged, every other cell
// is returned to the free list.
func (h *Heap) Collect() int {
	if traceCollections() {
		level := tracer().GetTraceLevel()
		tracer().SetTraceLevel(tracing.LevelDebug)
		defer tracer().SetTraceLevel(level)
	}
	before := h.navail
	tracer().Debugf("collecting garbage, starting from %d roots", h.roots.Depth())
	live := h.mark()
	free := h.sweep()
	h.collections++
	h.reclaimed = free - before
	tracer().Debugf("collection #%d: %d live, %d reclaimed, %d cells free",
		h.collections, live, h.reclaimed, free)
	return free
}

// mark sets the mark bit of every cell reachable from the roots. It uses an
// explicit work list; a cell is pushed at most once, as it is marked before it
// is pushed. Returns the number of marked cells.
func (h *Heap) mark() int {
	work := arraystack.New()
	count := 0
	visit := func(ref CellRef) {
		if ref.IsSentinel() || ref < 0 || int(ref) >= len(h.cells) {
			return
		}
		if c := &h.cells[ref]; !c.marked {
			c.marked = true
			count++
			work.Push(ref)
		}
	}
	h.roots.Each(visit)
	for !work.Empty() {
		v, _ := work.Pop()
		c := &h.cells[v.(CellRef)]
		switch c.tag {
		case ConsTag, ClosureTag:
			visit(c.first)
			visit(c.rest)
		}
	}
	return count
}

// sweep scans the heap in index order. Unmarked cells are reset to empty conses
// and threaded onto a rebuilt free list, marked cells are un-marked.
func (h *Heap) sweep() int {
	h.avail = Nil
	free := 0
	for i := range h.cells {
		c := &h.cells[i]
		if c.marked {
			c.marked = false
			continue
		}
		*c = emptyCell(h.avail)
		h.avail = CellRef(i)
		free++
	}
	h.navail = free
	return free
}
