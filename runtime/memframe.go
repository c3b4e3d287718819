package runtime

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/stacks/arraystack"
)

// This module implements the root stack, a stack of root frames.
// Root frames are used by native operations to protect the cell
// references they hold in local variables.

// RootStack is an off-heap LIFO list of protected cell references. The
// collector starts marking from here.
type RootStack struct {
	heap   *Heap
	slots  *arraylist.List   // of CellRef
	frames *arraystack.Stack // of *RootFrame, innermost on top
}

func newRootStack(h *Heap) *RootStack {
	return &RootStack{
		heap:   h,
		slots:  arraylist.New(),
		frames: arraystack.New(),
	}
}

// Depth returns the number of protected references.
func (st *RootStack) Depth() int {
	return st.slots.Size()
}

// Frames returns the number of open root frames.
func (st *RootStack) Frames() int {
	return st.frames.Size()
}

// Each calls f for every protected reference, bottom to top.
func (st *RootStack) Each(f func(CellRef)) {
	st.slots.Each(func(_ int, v interface{}) {
		f(v.(CellRef))
	})
}

// RootMark records the state of a root stack, see Mark and Unwind.
type RootMark struct {
	Depth  int // protected references
	Frames int // open frames
}

// Mark returns the current state of the root stack.
func (st *RootStack) Mark() RootMark {
	return RootMark{Depth: st.slots.Size(), Frames: st.frames.Size()}
}

// Unwind closes every frame opened after m was taken and drops every slot
// above m. Deferred Leave calls make this unnecessary along regular paths;
// interpreters use it to re-establish a known state after recovering from a
// fatal error.
func (st *RootStack) Unwind(m RootMark) {
	for st.frames.Size() > m.Frames {
		top, _ := st.frames.Pop()
		top.(*RootFrame).closed = true
	}
	st.truncate(m.Depth)
}

func (st *RootStack) truncate(depth int) {
	for st.slots.Size() > depth {
		st.slots.Remove(st.slots.Size() - 1)
	}
}

func (st *RootStack) top() *RootFrame {
	top, ok := st.frames.Peek()
	if !ok {
		return nil
	}
	return top.(*RootFrame)
}

// ---------------------------------------------------------------------------

// RootFrame is a scope of protected references. Create one with
// Heap.EnterFrame and always leave it with a deferred call to Leave.
type RootFrame struct {
	Name   string
	stack  *RootStack
	base   int // slot depth at entry
	closed bool
}

// EnterFrame opens a new root frame on top of the root stack.
func (h *Heap) EnterFrame(name string) *RootFrame {
	fr := &RootFrame{
		Name:  name,
		stack: h.roots,
		base:  h.roots.Depth(),
	}
	h.roots.frames.Push(fr)
	return fr
}

func (fr *RootFrame) String() string {
	return fmt.Sprintf("<roots %s @%d>", fr.Name, fr.base)
}

func (fr *RootFrame) checkTop(op string) {
	if fr.closed {
		Panic(op, Nil, ErrRootDiscipline, "frame %s already left", fr.Name)
	}
	if top := fr.stack.top(); top != fr {
		Panic(op, Nil, ErrRootDiscipline, "frame %s is not innermost, %v is", fr.Name, top)
	}
}

// Protect pushes ref onto the root stack. ref will survive collections until
// the frame is left. The returned Root is a handle to the protected slot.
// Only the innermost frame may protect references.
func (fr *RootFrame) Protect(ref CellRef) *Root {
	fr.checkTop("protect")
	fr.stack.heap.checkRef("protect", ref)
	fr.stack.slots.Add(ref)
	return &Root{frame: fr, index: fr.stack.slots.Size() - 1}
}

// Leave pops every reference the frame protected and closes the frame.
// Leaving a frame which is not the innermost one is fatal.
func (fr *RootFrame) Leave() {
	fr.checkTop("leave")
	fr.stack.truncate(fr.base)
	fr.stack.frames.Pop()
	fr.closed = true
}

// ---------------------------------------------------------------------------

// Root is a protected slot on the root stack.
type Root struct {
	frame *RootFrame
	index int
}

// Get returns the currently protected reference.
func (r *Root) Get() CellRef {
	if r.frame.closed {
		Panic("root-get", Nil, ErrRootDiscipline, "frame %s already left", r.frame.Name)
	}
	v, _ := r.frame.stack.slots.Get(r.index)
	return v.(CellRef)
}

// Set re-anchors the slot to protect ref instead.
func (r *Root) Set(ref CellRef) {
	if r.frame.closed {
		Panic("root-set", Nil, ErrRootDiscipline, "frame %s already left", r.frame.Name)
	}
	r.frame.stack.heap.checkRef("root-set", ref)
	r.frame.stack.slots.Set(r.index, ref)
}
