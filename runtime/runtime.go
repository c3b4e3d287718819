/*
Package runtime implements the memory of an interpreter runtime, consisting of
a fixed-capacity cell heap, a root stack, a mark-and-sweep collector and a
table of interned symbols.

Cell Heap

The heap is a fixed array of tagged cells. Cells are referenced by their index
(type CellRef), never by pointer. Unused cells are threaded into a free list
through their rest-field. Two references, Nil and True, are sentinels outside
of the addressable range.

Root Stack

Go call stacks are not scanned by the collector. Every cell reference which is
held only in a local variable and is used again after a possible allocation
has to be protected on the root stack. Protection is scoped:

    frame := heap.EnterFrame("my-op")
    defer frame.Leave()
    list := frame.Protect(heap.MakeCons(a, runtime.Nil))
    …
    list.Set(heap.MakeCons(b, list.Get()))   // re-anchor in place

Leaving a frame unprotects everything the frame protected. Frames nest like a
stack; leaving a frame out of order is a fatal contract violation.

Collector

Collection is triggered by the allocator when the free list is exhausted.
Marking starts from the root stack and follows cons and closure cells with
an explicit work list; sweeping rebuilds the free list.

Fatal Errors

Heap exhaustion, tag mismatches on typed accessors and broken root discipline
are programming-contract violations. They are signalled by panicking with a
*Fatal error value, which interpreters recover at their boundary.


----------------------------------------------------------------------

BSD License

Copyright (c) 2021-22, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software or the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package runtime

import (
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'celisp.runtime'.
func tracer() tracing.Trace {
	return tracing.Select("celisp.runtime")
}

// DefaultHeapSize is the number of cells of a heap if neither the caller nor
// the configuration specify a size.
const DefaultHeapSize = 4096

// ConfiguredHeapSize returns the heap size set with configuration key
// 'celisp.heap-size', or DefaultHeapSize.
func ConfiguredHeapSize() int {
	if n := gconf.GetInt("celisp.heap-size"); n > 0 {
		return n
	}
	return DefaultHeapSize
}

// traceCollections is a predicate: should collections raise the trace level?
// Set with configuration key 'celisp.trace-gc'.
func traceCollections() bool {
	return gconf.GetBool("celisp.trace-gc")
}
