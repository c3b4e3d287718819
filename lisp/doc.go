/*
Package lisp implements an interpreter for a minimal Lisp dialect on top of
the cell heap of package runtime.

An Interpreter owns a heap, a symbol table and a global environment.
Expressions are heap cells, usually produced by package reader:

    intp := lisp.NewInterpreter(lisp.WithHeapSize(10000))
    defer intp.Close()
    err := intp.Run(os.Stdin, os.Stdout)

Environments are chains of frames on the heap. Every frame is a cons cell
whose first part is an association list of (symbol . value) pairs and whose
rest is the parent frame, or nil for the global frame. Closures capture the
environment they are created in, scoping is lexical.

Special forms are recognized by keyword before anything else:

    quote env nullp atomp lambda cons car cdr eql
    > >= < <= = * + -  or and not if set! define

Any other list is a procedure call: the head has to evaluate to a closure.

Errors are either recoverable (undefined symbols, malformed special forms,
syntax errors) or fatal contract violations of the runtime (tag mismatches,
arity mismatches, heap exhaustion). Both are returned as errors from Eval;
fatal errors abort the current evaluation.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lisp

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'celisp.lisp'.
func tracer() tracing.Trace {
	return tracing.Select("celisp.lisp")
}
