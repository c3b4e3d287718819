package lisp

import "errors"

// Recoverable evaluation errors. Errors returned by Eval wrap one of them,
// test with errors.Is.
var (
	ErrUndefinedSymbol   = errors.New("undefined symbol")
	ErrUndefinedFunction = errors.New("undefined function")
	ErrNotProcedure      = errors.New("not a procedure")
	ErrMalformed         = errors.New("malformed special form")
)
