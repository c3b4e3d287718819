package lisp

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/celisp/lisp/reader"
	"github.com/npillmayer/celisp/runtime"
)

// Interpreter is an instance of the Lisp runtime. It owns a heap and the global
// environment living on it. An Interpreter must not be used from more than one
// goroutine at a time.
type Interpreter struct {
	heap   *runtime.Heap
	global runtime.CellRef
	base   *runtime.RootFrame // protects the global frame
	forms  map[*runtime.Symbol]specialForm
}

type config struct {
	heapSize int
	symbols  *runtime.SymbolTable
}

// Option configures an Interpreter.
type Option func(*config)

// WithHeapSize sets the number of heap cells. If not set, the size is taken from
// configuration key 'celisp.heap-size'.
func WithHeapSize(n int) Option {
	return func(c *config) {
		c.heapSize = n
	}
}

// WithSymbolTable lets the interpreter intern symbols in an existing table.
func WithSymbolTable(symbols *runtime.SymbolTable) Option {
	return func(c *config) {
		c.symbols = symbols
	}
}

// NewInterpreter creates an interpreter with a fresh heap and an empty global
// environment.
func NewInterpreter(opts ...Option) *Interpreter {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	h := runtime.NewHeap(c.heapSize, c.symbols)
	intp := &Interpreter{
		heap:  h,
		forms: makeSpecialForms(h.Symbols()),
	}
	intp.base = h.EnterFrame("global")
	intp.global = intp.base.Protect(intp.NewFrame(runtime.Nil)).Get()
	tracer().Debugf("new interpreter with heap of %d cells", h.Size())
	return intp
}

// Close releases the global environment. The interpreter must not be used
// afterwards.
func (intp *Interpreter) Close() {
	if intp.base != nil {
		intp.base.Leave()
		intp.base = nil
		intp.global = runtime.Nil
	}
}

// Heap returns the heap of the interpreter.
func (intp *Interpreter) Heap() *runtime.Heap {
	return intp.heap
}

// Global returns the global frame.
func (intp *Interpreter) Global() runtime.CellRef {
	return intp.global
}

// Eval evaluates expr in the global environment.
func (intp *Interpreter) Eval(expr runtime.CellRef) (runtime.CellRef, error) {
	return intp.EvalIn(expr, intp.global)
}

// EvalIn evaluates expr in environment env. Fatal contract violations abort the
// evaluation; they are returned as a *runtime.Fatal error and the root stack is
// reset to the state it had when EvalIn was called.
//
// The result is not protected.
func (intp *Interpreter) EvalIn(expr, env runtime.CellRef) (result runtime.CellRef, err error) {
	mark := intp.heap.Roots().Mark()
	defer func() {
		if x := recover(); x != nil {
			fatal := runtime.AsFatal(x)
			if fatal == nil {
				panic(x)
			}
			intp.heap.Roots().Unwind(mark)
			tracer().Infof("evaluation aborted: %v", fatal)
			result, err = runtime.Nil, fatal
		}
	}()
	return intp.eval(expr, env)
}

// NewReader creates a reader which creates expressions on the interpreter's heap.
func (intp *Interpreter) NewReader(input io.Reader, opts ...reader.Option) *reader.Reader {
	return reader.New(intp.heap, input, opts...)
}

// EvalString reads and evaluates every expression in src and returns the value
// of the last one. It stops at the first error.
func (intp *Interpreter) EvalString(src string) (runtime.CellRef, error) {
	rd := intp.NewReader(strings.NewReader(src), reader.WithSourceName("string"))
	result := runtime.Nil
	for {
		expr, err := rd.Read()
		if err == io.EOF {
			return result, nil
		} else if err != nil {
			return runtime.Nil, err
		}
		if result, err = intp.Eval(expr); err != nil {
			return runtime.Nil, err
		}
	}
}

// Run is a read-eval-print loop over an input stream. Every result is printed
// on a line of its own. Evaluation errors and syntax errors are reported as
// lines 'error: …', then the loop continues with the next expression. Run
// returns nil at the end of input, or the first error of the underlying
// reader.
func (intp *Interpreter) Run(input io.Reader, w io.Writer) error {
	rd := intp.NewReader(input)
	for {
		expr, err := rd.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			if !isReadDiagnostic(err) {
				return err
			}
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		result, err := intp.Eval(expr)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if err := Print(w, intp.heap, result); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
}

// isReadDiagnostic is a predicate: is err a syntax error or a fatal error while
// reading, after which reading may continue?
func isReadDiagnostic(err error) bool {
	var serr *reader.SyntaxError
	var fatal *runtime.Fatal
	return errors.As(err, &serr) || errors.As(err, &fatal)
}
