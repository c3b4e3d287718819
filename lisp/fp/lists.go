/*
Package fp provides higher-order helpers over lists living on a cell heap.

All helpers protect the cells they hold while allocating, so callers only
have to care for the arguments and results they keep across further
allocations themselves.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fp

import (
	"github.com/npillmayer/celisp/runtime"
)

// A ListMapper represents an operation on a list element, resulting in a new
// value or an error.
type ListMapper func(runtime.CellRef) (runtime.CellRef, error)

// A Predicate tests a list element.
type Predicate func(runtime.CellRef) bool

// listBuilder appends cells to a protected list.
type listBuilder struct {
	h    *runtime.Heap
	head *runtime.Root
	tail runtime.CellRef
}

func newListBuilder(h *runtime.Heap, frame *runtime.RootFrame) *listBuilder {
	return &listBuilder{h: h, head: frame.Protect(runtime.Nil), tail: runtime.Nil}
}

// add appends v. v is protected by MakeCons, the tail is reachable from head.
func (lb *listBuilder) add(v runtime.CellRef) {
	cell := lb.h.MakeCons(v, runtime.Nil)
	if lb.tail == runtime.Nil {
		lb.head.Set(cell)
	} else {
		lb.h.SetRest(lb.tail, cell)
	}
	lb.tail = cell
}

func (lb *listBuilder) list() runtime.CellRef {
	return lb.head.Get()
}

// Map creates a new list from the results of mapper applied to the elements of
// list, in order. If mapper fails, Map stops and returns the error.
func Map(h *runtime.Heap, list runtime.CellRef, mapper ListMapper) (runtime.CellRef, error) {
	frame := h.EnterFrame("map")
	defer frame.Leave()
	frame.Protect(list)
	result := newListBuilder(h, frame)
	for l := list; l != runtime.Nil; l = h.Rest(l) {
		v, err := mapper(h.First(l))
		if err != nil {
			return runtime.Nil, err
		}
		result.add(v)
	}
	return result.list(), nil
}

// Each calls f for every element of list, in order, and stops at the first error.
// list is protected, f may allocate.
func Each(h *runtime.Heap, list runtime.CellRef, f func(runtime.CellRef) error) error {
	frame := h.EnterFrame("each")
	defer frame.Leave()
	frame.Protect(list)
	for l := list; l != runtime.Nil; l = h.Rest(l) {
		if err := f(h.First(l)); err != nil {
			return err
		}
	}
	return nil
}

// Zip pairs keys and vals by position into an association list
//
//    ((k1 . v1) (k2 . v2) …)
//
// The flag is false if the lists differ in length; the association list then
// holds the pairs of the shorter length.
func Zip(h *runtime.Heap, keys, vals runtime.CellRef) (runtime.CellRef, bool) {
	frame := h.EnterFrame("zip")
	defer frame.Leave()
	frame.Protect(keys)
	frame.Protect(vals)
	result := newListBuilder(h, frame)
	k, v := keys, vals
	for k != runtime.Nil && v != runtime.Nil {
		result.add(h.MakeCons(h.First(k), h.First(v)))
		k, v = h.Rest(k), h.Rest(v)
	}
	return result.list(), k == runtime.Nil && v == runtime.Nil
}

// Filter returns a new list of the elements of list for which pred holds.
func Filter(h *runtime.Heap, list runtime.CellRef, pred Predicate) runtime.CellRef {
	frame := h.EnterFrame("filter")
	defer frame.Leave()
	frame.Protect(list)
	result := newListBuilder(h, frame)
	for l := list; l != runtime.Nil; l = h.Rest(l) {
		if x := h.First(l); pred(x) {
			result.add(x)
		}
	}
	return result.list()
}

// Remove returns a new list of the elements of list which are not equal to x.
// Equality is decided by eq, usually lisp.Eql.
func Remove(h *runtime.Heap, list, x runtime.CellRef, eq func(a, b runtime.CellRef) bool) runtime.CellRef {
	frame := h.EnterFrame("remove")
	defer frame.Leave()
	frame.Protect(x)
	return Filter(h, list, func(y runtime.CellRef) bool {
		return !eq(x, y)
	})
}

// Sum adds up a list of numbers. An element which is not a number is a fatal
// tag mismatch.
func Sum(h *runtime.Heap, list runtime.CellRef) int64 {
	var sum int64
	for l := list; l != runtime.Nil; l = h.Rest(l) {
		sum += h.Value(h.First(l))
	}
	return sum
}

// Seq creates the list of numbers from…to, inclusive. It is empty if from > to.
func Seq(h *runtime.Heap, from, to int64) runtime.CellRef {
	frame := h.EnterFrame("seq")
	defer frame.Leave()
	result := newListBuilder(h, frame)
	for n := from; n <= to; n++ {
		result.add(h.MakeNumber(n))
	}
	return result.list()
}

// Reverse returns a new list with the elements of list in reverse order.
func Reverse(h *runtime.Heap, list runtime.CellRef) runtime.CellRef {
	frame := h.EnterFrame("reverse")
	defer frame.Leave()
	frame.Protect(list)
	result := frame.Protect(runtime.Nil)
	for l := list; l != runtime.Nil; l = h.Rest(l) {
		result.Set(h.MakeCons(h.First(l), result.Get()))
	}
	return result.Get()
}

// Length counts the elements of a proper list.
func Length(h *runtime.Heap, list runtime.CellRef) int {
	n := 0
	for l := list; l != runtime.Nil; l = h.Rest(l) {
		n++
	}
	return n
}

// IsProperList is a predicate: is list nil or a chain of pairs ending in nil?
// Cyclic chains are not proper lists.
func IsProperList(h *runtime.Heap, list runtime.CellRef) bool {
	slow, fast := list, list
	for {
		if fast == runtime.Nil {
			return true
		}
		if !h.IsCons(fast) {
			return false
		}
		fast = h.Rest(fast)
		if fast == runtime.Nil {
			return true
		}
		if !h.IsCons(fast) {
			return false
		}
		fast = h.Rest(fast)
		slow = h.Rest(slow)
		if fast == slow {
			return false
		}
	}
}
