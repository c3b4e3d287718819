package lisp

import (
	"fmt"

	"github.com/npillmayer/celisp/runtime"
)

// Environments are chains of frames on the heap:
//
//    frame = ( alist . parent )
//    alist = ( (sym . value) (sym . value) … )
//
// Symbols are compared by canonical identity, never by cell or by spelling.

// NewFrame creates an empty frame with the given parent.
func (intp *Interpreter) NewFrame(parent runtime.CellRef) runtime.CellRef {
	return intp.heap.MakeCons(runtime.Nil, parent)
}

// bindingIn returns the (sym . value) pair for sym in a single frame, or Nil.
func (intp *Interpreter) bindingIn(frame runtime.CellRef, sym *runtime.Symbol) runtime.CellRef {
	h := intp.heap
	for a := h.First(frame); a != runtime.Nil; a = h.Rest(a) {
		b := h.First(a)
		if h.Symbol(h.First(b)) == sym {
			return b
		}
	}
	return runtime.Nil
}

// binding searches the chain of frames outward, starting at env.
func (intp *Interpreter) binding(env runtime.CellRef, sym *runtime.Symbol) runtime.CellRef {
	for f := env; f != runtime.Nil; f = intp.heap.Rest(f) {
		if b := intp.bindingIn(f, sym); b != runtime.Nil {
			return b
		}
	}
	return runtime.Nil
}

// lookup returns the value bound to the symbol cell name.
func (intp *Interpreter) lookup(name, env runtime.CellRef) (runtime.CellRef, error) {
	sym := intp.heap.Symbol(name)
	b := intp.binding(env, sym)
	if b == runtime.Nil {
		tracer().Debugf("lookup of unbound symbol '%s'", sym.Name())
		return runtime.Nil, fmt.Errorf("%w: %s", ErrUndefinedSymbol, sym.Name())
	}
	return intp.heap.Rest(b), nil
}

// define binds name to value in the innermost frame env. An existing binding in
// that frame is overwritten, enclosing frames are not searched.
func (intp *Interpreter) define(env, name, value runtime.CellRef) {
	h := intp.heap
	if b := intp.bindingIn(env, h.Symbol(name)); b != runtime.Nil {
		h.SetRest(b, value)
		return
	}
	frame := h.EnterFrame("define")
	defer frame.Leave()
	frame.Protect(env)
	frame.Protect(name)
	pair := frame.Protect(h.MakeCons(name, value))
	h.SetFirst(env, h.MakeCons(pair.Get(), h.First(env)))
}

// assign mutates the binding of name wherever it is found in the chain. If name
// is not bound at all, it is defined in the innermost frame.
func (intp *Interpreter) assign(env, name, value runtime.CellRef) {
	h := intp.heap
	if b := intp.binding(env, h.Symbol(name)); b != runtime.Nil {
		h.SetRest(b, value)
		return
	}
	intp.define(env, name, value)
}

// Define binds a symbol in the global environment, from Go.
func (intp *Interpreter) Define(name string, value runtime.CellRef) {
	h := intp.heap
	frame := h.EnterFrame("define-global")
	defer frame.Leave()
	frame.Protect(value)
	sym := h.MakeSymbol(name)
	intp.define(intp.global, sym, value)
}

// Lookup returns the value of a global symbol, from Go.
func (intp *Interpreter) Lookup(name string) (runtime.CellRef, bool) {
	sym, ok := intp.heap.Symbols().Peek(name)
	if !ok {
		return runtime.Nil, false
	}
	b := intp.binding(intp.global, sym)
	if b == runtime.Nil {
		return runtime.Nil, false
	}
	return intp.heap.Rest(b), true
}
