/*
Package celisp is a small Lisp core living on a fixed-size cell heap.

It combines a fixed arena of tagged cells with an intrusive free list,
a mark-and-sweep collector driven by an explicit root stack, a
symbol-interning table and a recursive-descent reader/evaluator for a
minimal Lisp dialect with closures and mutable bindings. Package
structure is as follows:

■ runtime: Package runtime implements the cell heap, the root stack with
scoped root frames, the collector and the symbol table.

■ lisp: Package lisp implements the interpreter instance, environments,
the evaluator and the printer. Sub-package reader converts text into heap
cells, sub-package fp holds higher-order helpers over heap lists.

■ lisp/lrepl: Command lrepl is an interactive console for the interpreter.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package celisp
