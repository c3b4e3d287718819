package lisp

import (
	"fmt"

	"github.com/npillmayer/celisp/lisp/fp"
	"github.com/npillmayer/celisp/runtime"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/

// specialForm evaluates the arguments of a special form (unevaluated) in env.
type specialForm func(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error)

// eval evaluates expr in env. Dispatch order: sentinels, symbols, other atoms,
// special forms, procedure calls.
func (intp *Interpreter) eval(expr, env runtime.CellRef) (runtime.CellRef, error) {
	h := intp.heap
	switch h.Tag(expr) {
	case runtime.NilTag, runtime.TrueTag:
		return expr, nil
	case runtime.SymbolTag:
		return intp.lookup(expr, env)
	case runtime.NumberTag, runtime.ClosureTag:
		return expr, nil
	}
	frame := h.EnterFrame("eval")
	defer frame.Leave()
	frame.Protect(expr)
	frame.Protect(env)
	head, args := h.First(expr), h.Rest(expr)
	if h.IsSymbol(head) {
		if form, ok := intp.forms[h.Symbol(head)]; ok {
			return form(intp, args, env)
		}
	}
	fn, err := intp.evalHead(head, env)
	if err != nil {
		return runtime.Nil, err
	}
	return intp.apply(fn, args, env)
}

// evalHead evaluates the operator position of a call. It has to yield a closure.
func (intp *Interpreter) evalHead(head, env runtime.CellRef) (runtime.CellRef, error) {
	h := intp.heap
	var fn runtime.CellRef
	if h.IsSymbol(head) {
		b := intp.binding(env, h.Symbol(head))
		if b == runtime.Nil {
			return runtime.Nil, fmt.Errorf("%w: %s", ErrUndefinedFunction, h.Symbol(head).Name())
		}
		fn = h.Rest(b)
	} else {
		var err error
		if fn, err = intp.eval(head, env); err != nil {
			return runtime.Nil, err
		}
	}
	if !h.IsClosure(fn) {
		return runtime.Nil, fmt.Errorf("%w: %s", ErrNotProcedure, Sprint(h, fn))
	}
	return fn, nil
}

// apply calls closure fn with the argument expressions argExprs. Arguments are
// evaluated left to right in the caller's environment before the new frame is
// created; the new frame's parent is the closure's defining environment.
// An arity mismatch is fatal.
func (intp *Interpreter) apply(fn, argExprs, callerEnv runtime.CellRef) (runtime.CellRef, error) {
	h := intp.heap
	frame := h.EnterFrame("apply")
	defer frame.Leave()
	frame.Protect(fn)
	frame.Protect(argExprs)
	frame.Protect(callerEnv)
	args, err := fp.Map(h, argExprs, func(x runtime.CellRef) (runtime.CellRef, error) {
		return intp.eval(x, callerEnv)
	})
	if err != nil {
		return runtime.Nil, err
	}
	frame.Protect(args)
	body := h.Body(fn)
	params := h.First(body)
	bindings, ok := fp.Zip(h, params, args)
	if !ok {
		runtime.Panic("apply", fn, runtime.ErrArity, "procedure takes %d arguments, called with %d",
			fp.Length(h, params), fp.Length(h, args))
	}
	env := frame.Protect(h.MakeCons(bindings, h.Environment(fn))).Get()
	tracer().Debugf("apply %v to %d arguments", fn, fp.Length(h, args))
	result := runtime.Nil
	err = fp.Each(h, h.Rest(body), func(expr runtime.CellRef) error {
		var err error
		result, err = intp.eval(expr, env)
		return err
	})
	return result, err
}

// --- Special forms ---------------------------------------------------------

func makeSpecialForms(symbols *runtime.SymbolTable) map[*runtime.Symbol]specialForm {
	forms := map[string]specialForm{
		"quote":  quoteForm,
		"env":    envForm,
		"nullp":  nullpForm,
		"atomp":  atompForm,
		"lambda": lambdaForm,
		"cons":   consForm,
		"car":    carForm,
		"cdr":    cdrForm,
		"eql":    eqlForm,
		">":      comparison(">", func(a, b int64) bool { return a > b }),
		">=":     comparison(">=", func(a, b int64) bool { return a >= b }),
		"<":      comparison("<", func(a, b int64) bool { return a < b }),
		"<=":     comparison("<=", func(a, b int64) bool { return a <= b }),
		"=":      comparison("=", func(a, b int64) bool { return a == b }),
		"*":      arithmetic("*", func(a, b int64) int64 { return a * b }),
		"+":      arithmetic("+", func(a, b int64) int64 { return a + b }),
		"-":      arithmetic("-", func(a, b int64) int64 { return a - b }),
		"or":     orForm,
		"and":    andForm,
		"not":    notForm,
		"if":     ifForm,
		"set!":   setForm,
		"define": defineForm,
	}
	m := make(map[*runtime.Symbol]specialForm, len(forms))
	for name, form := range forms {
		m[symbols.Intern(name)] = form
	}
	return m
}

// operands checks that args is a proper list of n expressions and returns them.
// The expressions stay reachable from the protected call expression.
func (intp *Interpreter) operands(form string, args runtime.CellRef, n int) ([]runtime.CellRef, error) {
	h := intp.heap
	ops := make([]runtime.CellRef, 0, n)
	l := args
	for ; h.IsCons(l) && len(ops) < n; l = h.Rest(l) {
		ops = append(ops, h.First(l))
	}
	if len(ops) != n || l != runtime.Nil {
		return nil, fmt.Errorf("%w: %s expects %d operand(s)", ErrMalformed, form, n)
	}
	return ops, nil
}

// evalTwo evaluates two operands. The first value is protected while the second
// is evaluated; both results are unprotected on return.
func (intp *Interpreter) evalTwo(form string, args, env runtime.CellRef) (runtime.CellRef, runtime.CellRef, error) {
	ops, err := intp.operands(form, args, 2)
	if err != nil {
		return runtime.Nil, runtime.Nil, err
	}
	frame := intp.heap.EnterFrame(form)
	defer frame.Leave()
	a, err := intp.eval(ops[0], env)
	if err != nil {
		return runtime.Nil, runtime.Nil, err
	}
	frame.Protect(a)
	b, err := intp.eval(ops[1], env)
	if err != nil {
		return runtime.Nil, runtime.Nil, err
	}
	return a, b, nil
}

func (intp *Interpreter) evalOne(form string, args, env runtime.CellRef) (runtime.CellRef, error) {
	ops, err := intp.operands(form, args, 1)
	if err != nil {
		return runtime.Nil, err
	}
	return intp.eval(ops[0], env)
}

func truth(b bool) runtime.CellRef {
	if b {
		return runtime.True
	}
	return runtime.Nil
}

func quoteForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	ops, err := intp.operands("quote", args, 1)
	if err != nil {
		return runtime.Nil, err
	}
	return ops[0], nil
}

func envForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	if _, err := intp.operands("env", args, 0); err != nil {
		return runtime.Nil, err
	}
	return env, nil
}

func nullpForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	v, err := intp.evalOne("nullp", args, env)
	if err != nil {
		return runtime.Nil, err
	}
	return truth(v == runtime.Nil), nil
}

func notForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	v, err := intp.evalOne("not", args, env)
	if err != nil {
		return runtime.Nil, err
	}
	return truth(v == runtime.Nil), nil
}

func atompForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	v, err := intp.evalOne("atomp", args, env)
	if err != nil {
		return runtime.Nil, err
	}
	return truth(intp.heap.IsAtom(v)), nil
}

// lambdaForm creates a closure over the current environment. args is the
// closure's body (params . exprs).
func lambdaForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	h := intp.heap
	if !h.IsCons(args) || !fp.IsProperList(h, args) {
		return runtime.Nil, fmt.Errorf("%w: lambda expects a parameter list", ErrMalformed)
	}
	params := h.First(args)
	if !fp.IsProperList(h, params) {
		return runtime.Nil, fmt.Errorf("%w: lambda parameters must be a list", ErrMalformed)
	}
	for p := params; p != runtime.Nil; p = h.Rest(p) {
		if !h.IsSymbol(h.First(p)) {
			return runtime.Nil, fmt.Errorf("%w: lambda parameter %s is not a symbol",
				ErrMalformed, Sprint(h, h.First(p)))
		}
	}
	return h.MakeClosure(args, env), nil
}

func consForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	a, b, err := intp.evalTwo("cons", args, env)
	if err != nil {
		return runtime.Nil, err
	}
	return intp.heap.MakeCons(a, b), nil
}

// car and cdr of anything but a pair are fatal.
func carForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	v, err := intp.evalOne("car", args, env)
	if err != nil {
		return runtime.Nil, err
	}
	return intp.heap.First(v), nil
}

func cdrForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	v, err := intp.evalOne("cdr", args, env)
	if err != nil {
		return runtime.Nil, err
	}
	return intp.heap.Rest(v), nil
}

func eqlForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	a, b, err := intp.evalTwo("eql", args, env)
	if err != nil {
		return runtime.Nil, err
	}
	return truth(Eql(intp.heap, a, b)), nil
}

// Eql compares two cells: equal tags and, for numbers, equal values; for symbols
// identical canonical symbols; otherwise identical cells.
func Eql(h *runtime.Heap, a, b runtime.CellRef) bool {
	if h.Tag(a) != h.Tag(b) {
		return false
	}
	switch h.Tag(a) {
	case runtime.NumberTag:
		return h.Value(a) == h.Value(b)
	case runtime.SymbolTag:
		return h.Symbol(a) == h.Symbol(b)
	}
	return a == b
}

// Numeric operands which are not numbers are fatal tag mismatches.
func comparison(name string, cmp func(a, b int64) bool) specialForm {
	return func(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
		a, b, err := intp.evalTwo(name, args, env)
		if err != nil {
			return runtime.Nil, err
		}
		return truth(cmp(intp.heap.Value(a), intp.heap.Value(b))), nil
	}
}

func arithmetic(name string, op func(a, b int64) int64) specialForm {
	return func(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
		a, b, err := intp.evalTwo(name, args, env)
		if err != nil {
			return runtime.Nil, err
		}
		h := intp.heap
		return h.MakeNumber(op(h.Value(a), h.Value(b))), nil
	}
}

func orForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	h := intp.heap
	if !fp.IsProperList(h, args) {
		return runtime.Nil, fmt.Errorf("%w: or", ErrMalformed)
	}
	for l := args; l != runtime.Nil; l = h.Rest(l) {
		v, err := intp.eval(h.First(l), env)
		if err != nil {
			return runtime.Nil, err
		}
		if v != runtime.Nil {
			return runtime.True, nil
		}
	}
	return runtime.Nil, nil
}

func andForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	h := intp.heap
	if !fp.IsProperList(h, args) {
		return runtime.Nil, fmt.Errorf("%w: and", ErrMalformed)
	}
	for l := args; l != runtime.Nil; l = h.Rest(l) {
		v, err := intp.eval(h.First(l), env)
		if err != nil {
			return runtime.Nil, err
		}
		if v == runtime.Nil {
			return runtime.Nil, nil
		}
	}
	return runtime.True, nil
}

// ifForm accepts (if c then) and (if c then else); a missing else is nil.
func ifForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	h := intp.heap
	n := 0
	if fp.IsProperList(h, args) {
		n = fp.Length(h, args)
	}
	if n != 2 && n != 3 {
		return runtime.Nil, fmt.Errorf("%w: if expects a condition and 1 or 2 branches", ErrMalformed)
	}
	ops, _ := intp.operands("if", args, n)
	c, err := intp.eval(ops[0], env)
	if err != nil {
		return runtime.Nil, err
	}
	if c != runtime.Nil {
		return intp.eval(ops[1], env)
	}
	if n == 3 {
		return intp.eval(ops[2], env)
	}
	return runtime.Nil, nil
}

// binder checks (name expr) and evaluates expr. Nothing is bound if the
// evaluation fails.
func (intp *Interpreter) binder(form string, args, env runtime.CellRef) (runtime.CellRef, runtime.CellRef, error) {
	ops, err := intp.operands(form, args, 2)
	if err != nil {
		return runtime.Nil, runtime.Nil, err
	}
	if !intp.heap.IsSymbol(ops[0]) {
		return runtime.Nil, runtime.Nil, fmt.Errorf("%w: %s expects a symbol, got %s",
			ErrMalformed, form, Sprint(intp.heap, ops[0]))
	}
	v, err := intp.eval(ops[1], env)
	if err != nil {
		return runtime.Nil, runtime.Nil, err
	}
	return ops[0], v, nil
}

func setForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	name, v, err := intp.binder("set!", args, env)
	if err != nil {
		return runtime.Nil, err
	}
	intp.assign(env, name, v)
	return v, nil
}

func defineForm(intp *Interpreter, args, env runtime.CellRef) (runtime.CellRef, error) {
	name, v, err := intp.binder("define", args, env)
	if err != nil {
		return runtime.Nil, err
	}
	intp.define(env, name, v)
	return v, nil
}
