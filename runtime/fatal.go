package runtime

import (
	"errors"
	"fmt"
)

// Sentinel causes of fatal errors. Test for them with errors.Is.
var (
	ErrHeapExhausted  = errors.New("heap exhausted")
	ErrTagMismatch    = errors.New("tag mismatch")
	ErrBadRef         = errors.New("invalid cell reference")
	ErrRootDiscipline = errors.New("root stack discipline violated")
	ErrArity          = errors.New("arity mismatch")
)

// Fatal is a programming-contract violation. The runtime panics with a *Fatal;
// the current evaluation cannot safely continue, but the heap is left in a
// consistent state.
type Fatal struct {
	Op  string  // operation which detected the violation
	Ref CellRef // offending cell, if any
	Err error   // one of the sentinel causes
	Msg string  // optional detail
}

func (f *Fatal) Error() string {
	if f.Msg == "" {
		return fmt.Sprintf("fatal: %s: %v", f.Op, f.Err)
	}
	return fmt.Sprintf("fatal: %s: %v: %s", f.Op, f.Err, f.Msg)
}

// Unwrap returns the sentinel cause.
func (f *Fatal) Unwrap() error {
	return f.Err
}

// Panic raises a fatal contract violation. Exported for the evaluator, which
// reports closure arity mismatches this way.
func Panic(op string, ref CellRef, cause error, format string, args ...interface{}) {
	f := &Fatal{Op: op, Ref: ref, Err: cause}
	if format != "" {
		f.Msg = fmt.Sprintf(format, args...)
	}
	tracer().Errorf(f.Error())
	panic(f)
}

// AsFatal inspects a recovered panic value. It returns the *Fatal if r is one,
// or nil otherwise.
func AsFatal(r interface{}) *Fatal {
	if f, ok := r.(*Fatal); ok {
		return f
	}
	return nil
}
