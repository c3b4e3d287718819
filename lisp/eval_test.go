package lisp

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/celisp/runtime"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// session runs src through a read-eval-print loop and returns the output lines.
func session(t *testing.T, intp *Interpreter, src string) []string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, intp.Run(strings.NewReader(src), &out))
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestEvalSession(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(1000))
	defer intp.Close()
	out := session(t, intp, `
(+ 1 2)
(if (> 2 1) (quote yes) (quote no))
(define square (lambda (x) (* x x)))
(square 5)
(car (quote (1 2 3)))
(cdr (quote (1 2 3)))
foo
(+ 1 1)
`)
	assert.Equal(t, []string{
		"3",
		"yes",
		"<procedure>",
		"25",
		"1",
		"(2 3)",
		"error: undefined symbol: foo",
		"2",
	}, out)
}

func TestLexicalScope(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(1000))
	defer intp.Close()
	out := session(t, intp, `
(define x 10)
(define f (lambda (x) (lambda (y) (+ x y))))
(define g (f 3))
(g 4)
(set! x 100)
(g 4)
x
`)
	assert.Equal(t, []string{"10", "<procedure>", "<procedure>", "7", "100", "7", "100"}, out)
}

func TestSetAndDefine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(1000))
	defer intp.Close()
	out := session(t, intp, `
(define n 0)
(define count (lambda () (set! n (+ n 1))))
(count)
(count)
n
(define h (lambda () (define z 5) z))
(h)
z
(set! w 9)
w
(define n 7)
n
`)
	assert.Equal(t, []string{
		"0", "<procedure>", "1", "2", "2",
		"<procedure>", "5", "error: undefined symbol: z",
		"9", "9",
		"7", "7",
	}, out)
}

func TestDefineOverwritesInSameFrame(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(200))
	defer intp.Close()
	_, err := intp.EvalString("(define a 1) (define a 2) (define a 3)")
	require.NoError(t, err)
	alist := intp.Heap().First(intp.Global())
	assert.Equal(t, 1, countPairs(intp.Heap(), alist), "redefinition must not add bindings")
	v, ok := intp.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, int64(3), intp.Heap().Value(v))
}

func countPairs(h *runtime.Heap, l runtime.CellRef) int {
	n := 0
	for ; l != runtime.Nil; l = h.Rest(l) {
		n++
	}
	return n
}

func TestPredicatesAndLogic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(1000))
	defer intp.Close()
	out := session(t, intp, `
(eql 'a 'a)
(eql 'a 'b)
(eql 1 1)
(eql '(1) '(1))
(nullp '())
(nullp 0)
(not nil)
(not t)
(atomp 'a)
(atomp '(1))
(or nil 2)
(or nil nil)
(or)
(and 1 nil)
(and 1 2)
(and)
(if nil 1)
(if t 1 2)
(>= 2 2)
(<= 3 2)
(< 1 2)
(= 4 4)
(- 10 3)
(- -2 3)
`)
	assert.Equal(t, []string{
		"t", "nil", "t", "nil",
		"t", "nil", "t", "nil",
		"t", "nil",
		"t", "nil", "nil",
		"nil", "t", "t",
		"nil", "1",
		"t", "nil", "t", "t",
		"7", "-5",
	}, out)
}

func TestConsAndEnv(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(1000))
	defer intp.Close()
	out := session(t, intp, `
(cons 1 2)
(cons 1 (cons 2 3))
(cons 1 (cons 2 nil))
(define e (env))
(atomp (env))
`)
	require.Len(t, out, 5)
	assert.Equal(t, []string{"(1 . 2)", "(1 2 . 3)", "(1 2)"}, out[:3])
	assert.Contains(t, out[3], "...", "self-referential environment must be cut")
	assert.Equal(t, "nil", out[4])
}

func TestRecoverableErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(500))
	defer intp.Close()
	for _, c := range []struct {
		src string
		err error
	}{
		{"foo", ErrUndefinedSymbol},
		{"(nope 1)", ErrUndefinedFunction},
		{"(1 2)", ErrNotProcedure},
		{"((quote a) 2)", ErrNotProcedure},
		{"(quote)", ErrMalformed},
		{"(quote a b)", ErrMalformed},
		{"(define 1 2)", ErrMalformed},
		{"(set! x)", ErrMalformed},
		{"(lambda (1) 1)", ErrMalformed},
		{"(lambda)", ErrMalformed},
		{"(if)", ErrMalformed},
		{"(car)", ErrMalformed},
		{"(+ 1 undefined)", ErrUndefinedSymbol},
	} {
		_, err := intp.EvalString(c.src)
		assert.True(t, errors.Is(err, c.err), "%s: expected %v, have %v", c.src, c.err, err)
		assert.Equal(t, 1, intp.Heap().Roots().Depth(), "%s: root stack not balanced", c.src)
	}
	_, err := intp.EvalString("(define x (+ 1 y))")
	require.Error(t, err)
	_, ok := intp.Lookup("x")
	assert.False(t, ok, "failed define must not bind")
}

func TestFatalErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(500))
	defer intp.Close()
	for _, c := range []struct {
		src string
		err error
	}{
		{"((lambda (x) x) 1 2)", runtime.ErrArity},
		{"((lambda (x y) x) 1)", runtime.ErrArity},
		{"(car 1)", runtime.ErrTagMismatch},
		{"(cdr nil)", runtime.ErrTagMismatch},
		{"(+ 1 'a)", runtime.ErrTagMismatch},
		{"(< nil 1)", runtime.ErrTagMismatch},
	} {
		_, err := intp.EvalString(c.src)
		var fatal *runtime.Fatal
		assert.True(t, errors.As(err, &fatal), "%s: expected a fatal error, have %v", c.src, err)
		assert.True(t, errors.Is(err, c.err), "%s: expected %v, have %v", c.src, c.err, err)
		assert.Equal(t, 1, intp.Heap().Roots().Depth(), "%s: root stack not restored", c.src)
		assert.Equal(t, 1, intp.Heap().Roots().Frames(), "%s: frames not restored", c.src)
	}
	v, err := intp.EvalString("(+ 20 22)")
	require.NoError(t, err)
	assert.Equal(t, int64(42), intp.Heap().Value(v), "interpreter must be usable after fatal errors")
}

const sumProgram = `(define sum (lambda (n) (if (= n 0) 0 (+ n (sum (- n 1))))))`

func TestEvalUnderPressure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(2000))
	defer intp.Close()
	_, err := intp.EvalString(sumProgram)
	require.NoError(t, err)
	_, err = intp.EvalString("(define make (lambda (n) (lambda () n))) (define k (make 42))")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		v, err := intp.EvalString("(sum 100)")
		require.NoError(t, err)
		assert.Equal(t, int64(5050), intp.Heap().Value(v))
	}
	assert.True(t, intp.Heap().Collections() > 0, "expected evaluation to trigger collections")
	v, err := intp.EvalString("(k)")
	require.NoError(t, err)
	assert.Equal(t, int64(42), intp.Heap().Value(v), "captured environment must survive collections")
}

func TestEvalHeapExhaustion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(300))
	defer intp.Close()
	out := session(t, intp, sumProgram+`
(sum 1000)
(sum 5)
`)
	require.Len(t, out, 3)
	assert.Equal(t, "<procedure>", out[0])
	assert.True(t, strings.HasPrefix(out[1], "error: fatal:"), "expected fatal diagnostic, have %q", out[1])
	assert.Contains(t, out[1], runtime.ErrHeapExhausted.Error())
	assert.Equal(t, "15", out[2])
	assert.Equal(t, 1, intp.Heap().Roots().Depth())
}

func TestSyntaxErrorsInSession(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(200))
	defer intp.Close()
	out := session(t, intp, "(+ 1 2) ) (* 2 3)")
	require.Len(t, out, 3)
	assert.Equal(t, "3", out[0])
	assert.True(t, strings.HasPrefix(out[1], "error: "))
	assert.Contains(t, out[1], "syntax error")
	assert.Equal(t, "6", out[2])
}

func TestSessionContinuesAfterDanglingQuote(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.lisp")
	defer teardown()
	//
	intp := NewInterpreter(WithHeapSize(200))
	defer intp.Close()
	out := session(t, intp, "(a ') (+ 1 2)\n(+ 3 4)")
	require.Len(t, out, 3)
	assert.Contains(t, out[0], "quote without expression")
	assert.Equal(t, []string{"3", "7"}, out[1:])
}
