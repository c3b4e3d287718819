package runtime

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectFatal runs f and checks that it panics with a *Fatal caused by cause.
func expectFatal(t *testing.T, cause error, f func()) {
	t.Helper()
	defer func() {
		fatal := AsFatal(recover())
		if fatal == nil {
			t.Fatalf("expected fatal error %v, got none", cause)
		}
		if !errors.Is(fatal, cause) {
			t.Fatalf("expected fatal error %v, got %v", cause, fatal)
		}
	}()
	f()
}

func TestNewHeapFreeList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.runtime")
	defer teardown()
	//
	h := NewHeap(5, nil)
	assert.Equal(t, 5, h.Size())
	assert.Equal(t, 5, h.Free())
	for i := 0; i < 5; i++ { // free list threads cells in index order
		assert.Equal(t, CellRef(i), h.MakeNumber(int64(i)))
	}
	assert.Equal(t, 0, h.Free())
	assert.Equal(t, 0, h.Collections())
}

func TestConstructorsAndAccessors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.runtime")
	defer teardown()
	//
	h := NewHeap(16, nil)
	frame := h.EnterFrame("test")
	defer frame.Leave()
	n := frame.Protect(h.MakeNumber(-7)).Get()
	s := frame.Protect(h.MakeSymbol("foo")).Get()
	c := frame.Protect(h.MakeCons(n, s)).Get()
	cl := h.MakeClosure(c, Nil)
	assert.Equal(t, NumberTag, h.Tag(n))
	assert.Equal(t, int64(-7), h.Value(n))
	assert.Equal(t, SymbolTag, h.Tag(s))
	assert.Same(t, h.Symbols().Intern("foo"), h.Symbol(s))
	assert.Equal(t, n, h.First(c))
	assert.Equal(t, s, h.Rest(c))
	assert.True(t, h.IsClosure(cl))
	assert.Equal(t, c, h.Body(cl))
	assert.Equal(t, Nil, h.Environment(cl))
	h.SetFirst(c, True)
	h.SetRest(c, Nil)
	assert.Equal(t, True, h.First(c))
	assert.Equal(t, Nil, h.Rest(c))
	assert.Equal(t, NilTag, h.Tag(Nil))
	assert.Equal(t, TrueTag, h.Tag(True))
	assert.True(t, h.IsAtom(Nil))
	assert.False(t, h.IsCons(Nil))
}

func TestSymbolCellsShareCanonicalName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.runtime")
	defer teardown()
	//
	h := NewHeap(8, nil)
	frame := h.EnterFrame("test")
	defer frame.Leave()
	a := frame.Protect(h.MakeSymbol("x")).Get()
	b := frame.Protect(h.MakeSymbol("x")).Get()
	assert.NotEqual(t, a, b, "two symbol cells expected")
	assert.Same(t, h.Symbol(a), h.Symbol(b))
}

func TestTagMismatchIsFatal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.runtime")
	defer teardown()
	//
	h := NewHeap(4, nil)
	n := h.MakeNumber(1)
	expectFatal(t, ErrTagMismatch, func() { h.First(n) })
	expectFatal(t, ErrTagMismatch, func() { h.Rest(Nil) })
	expectFatal(t, ErrTagMismatch, func() { h.Value(True) })
	expectFatal(t, ErrTagMismatch, func() { h.Body(n) })
	expectFatal(t, ErrBadRef, func() { h.Tag(CellRef(4)) })
	expectFatal(t, ErrBadRef, func() { h.MakeCons(CellRef(99), Nil) })
	assert.Equal(t, 0, h.Roots().Depth(), "root stack must be balanced after fatal errors")
}

func TestExhaustionCollectsOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.runtime")
	defer teardown()
	//
	h := NewHeap(4, nil)
	for i := 0; i < 4; i++ {
		h.MakeNumber(int64(i)) // garbage
	}
	require.Equal(t, 0, h.Collections())
	h.MakeNumber(99) // free list empty: must collect exactly once
	assert.Equal(t, 1, h.Collections())
	assert.Equal(t, 4, h.Stats().LastReclaimed)
	assert.Equal(t, 3, h.Free())
}

func TestExhaustionIsFatal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.runtime")
	defer teardown()
	//
	h := NewHeap(3, nil)
	frame := h.EnterFrame("test")
	for i := 0; i < 3; i++ {
		frame.Protect(h.MakeNumber(int64(i)))
	}
	expectFatal(t, ErrHeapExhausted, func() { h.MakeNumber(3) })
	assert.Equal(t, 1, h.Collections())
	frame.Leave()
	// after un-protecting, allocation succeeds again
	h.MakeNumber(4)
	assert.Equal(t, 2, h.Collections())
	assert.Equal(t, 2, h.Free())
}

func TestConsProtectsArguments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.runtime")
	defer teardown()
	//
	h := NewHeap(3, nil)
	a := h.MakeNumber(1)
	b := h.MakeNumber(2)
	h.MakeNumber(3)       // heap full now
	c := h.MakeCons(a, b) // collects, a and b must survive
	assert.Equal(t, 1, h.Collections())
	assert.Equal(t, int64(1), h.Value(h.First(c)))
	assert.Equal(t, int64(2), h.Value(h.Rest(c)))
	assert.Equal(t, 0, h.Free())
}
