/*
Package lrepl/main provides an interactive command line tool (L.REPL) for
the celisp interpreter. Input is read expression by expression; expressions
may span several lines, the prompt changes while parentheses are open.

Besides Lisp expressions, L.REPL understands a couple of commands:

    :stats          heap usage and a fingerprint of the heap image
    :gc             run a collection now
    :symbols        list the interned symbols
    :tree <expr>    evaluate <expr> and display the result as a tree
    :quit           leave L.REPL (or <ctrl>D)

Files given as arguments are run non-interactively, as is input which is not
a terminal.


License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'celisp.repl'
func tracer() tracing.Trace {
	return tracing.Select("celisp.repl")
}
