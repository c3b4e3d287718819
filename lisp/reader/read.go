/*
Package reader converts the textual form of expressions into heap cells.

The reader is a recursive-descent parser with one rune of lookahead.
Grammar:

    Expr  ::=  '(' Expr* ')'
    Expr  ::=  '\'' Expr            // (quote Expr)
    Expr  ::=  number               // -?[0-9]+
    Expr  ::=  'nil' | 't'
    Expr  ::=  symbol               // any other run of non-delimiters

Whitespace separates tokens, comments start with ';' and extend to the end
of the line. Dotted pairs are not part of the input syntax.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/npillmayer/celisp"
	"github.com/npillmayer/celisp/runtime"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'celisp.reader'.
func tracer() tracing.Trace {
	return tracing.Select("celisp.reader")
}

// SyntaxError is a recoverable error for malformed input. After a syntax
// error, reading continues behind the offending input.
type SyntaxError struct {
	Source string
	Span   celisp.Span
	Msg    string
	Err    error // underlying cause, e.g. io.ErrUnexpectedEOF
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%s: syntax error: %s", e.Source, e.Span.From(), e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Option configures a Reader.
type Option func(*Reader)

// WithSourceName sets the name of the input in diagnostics.
func WithSourceName(name string) Option {
	return func(r *Reader) {
		r.source = name
	}
}

// Reader reads expressions from a rune stream and creates them on a heap.
type Reader struct {
	heap   *runtime.Heap
	in     io.RuneScanner
	source string
	pos    celisp.Position // position of the next rune
	last   celisp.Position // position of the most recently read rune
	depth  int             // list nesting of the current read
	quote  *runtime.Symbol
}

// New creates a reader for input, allocating cells on h.
func New(h *runtime.Heap, input io.Reader, opts ...Option) *Reader {
	rs, ok := input.(io.RuneScanner)
	if !ok {
		rs = bufio.NewReader(input)
	}
	r := &Reader{
		heap:   h,
		in:     rs,
		source: "input",
		pos:    celisp.Position{Line: 1, Column: 1},
		quote:  h.Symbols().Intern("quote"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read reads the next expression. At the end of input it returns io.EOF;
// malformed input is reported as a *SyntaxError. If the heap is exhausted
// while reading, Read returns the *runtime.Fatal and skips the rest of the
// expression.
//
// The expression returned is not protected.
func (r *Reader) Read() (expr runtime.CellRef, err error) {
	mark := r.heap.Roots().Mark()
	defer func() {
		if x := recover(); x != nil {
			fatal := runtime.AsFatal(x)
			if fatal == nil {
				panic(x)
			}
			r.heap.Roots().Unwind(mark)
			r.resync()
			expr, err = runtime.Nil, fatal
		}
	}()
	r.depth = 0
	expr, err = r.read()
	if _, ok := err.(*SyntaxError); ok && r.depth > 0 {
		r.resync()
	}
	return expr, err
}

// --- Runes -----------------------------------------------------------------

func (r *Reader) next() (rune, error) {
	ch, _, err := r.in.ReadRune()
	if err != nil {
		return 0, err
	}
	r.last = r.pos
	r.pos.Offset++
	if ch == '\n' {
		r.pos.Line++
		r.pos.Column = 1
	} else {
		r.pos.Column++
	}
	return ch, nil
}

// back un-reads the most recently read rune. Only one rune of lookahead is
// supported.
func (r *Reader) back() {
	if err := r.in.UnreadRune(); err == nil {
		r.pos = r.last
	}
}

// skipSpace consumes whitespace and comments and returns the next significant
// rune, which is consumed as well.
func (r *Reader) skipSpace() (rune, error) {
	for {
		ch, err := r.next()
		if err != nil {
			return 0, err
		}
		if unicode.IsSpace(ch) {
			continue
		}
		if ch == ';' {
			for ch != '\n' {
				if ch, err = r.next(); err != nil {
					return 0, err
				}
			}
			continue
		}
		return ch, nil
	}
}

// resync skips input until the list nesting of an interrupted read is closed.
func (r *Reader) resync() {
	for r.depth > 0 {
		ch, err := r.next()
		if err != nil {
			r.depth = 0
			return
		}
		switch ch {
		case '(':
			r.depth++
		case ')':
			r.depth--
		case ';':
			for ch != '\n' && err == nil {
				ch, err = r.next()
			}
		}
	}
}

func isDelimiter(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == ';' || ch == '\''
}

func (r *Reader) errorf(start celisp.Position, cause error, format string, args ...interface{}) error {
	err := &SyntaxError{
		Source: r.source,
		Span:   celisp.Span{start, r.pos},
		Msg:    fmt.Sprintf(format, args...),
		Err:    cause,
	}
	tracer().Infof(err.Error())
	return err
}

// --- Expressions -----------------------------------------------------------

func (r *Reader) read() (runtime.CellRef, error) {
	ch, err := r.skipSpace()
	if err != nil {
		return runtime.Nil, err
	}
	start := r.last
	switch ch {
	case '(':
		return r.readList(start)
	case ')':
		if r.depth > 0 { // leave it to the enclosing list
			r.back()
		}
		return runtime.Nil, r.errorf(start, nil, "unexpected ')'")
	case '\'':
		return r.readQuote(start)
	}
	r.back()
	return r.readAtom(start)
}

func (r *Reader) readList(start celisp.Position) (runtime.CellRef, error) {
	h := r.heap
	frame := h.EnterFrame("read-list")
	defer frame.Leave()
	head := frame.Protect(runtime.Nil)
	tail := runtime.Nil
	r.depth++
	for {
		ch, err := r.skipSpace()
		if err == io.EOF {
			return runtime.Nil, r.errorf(start, io.ErrUnexpectedEOF, "end of input inside list")
		} else if err != nil {
			return runtime.Nil, err
		}
		if ch == ')' {
			r.depth--
			return head.Get(), nil
		}
		r.back()
		x, err := r.read()
		if err != nil {
			return runtime.Nil, err
		}
		cell := h.MakeCons(x, runtime.Nil)
		if tail == runtime.Nil {
			head.Set(cell)
		} else {
			h.SetRest(tail, cell)
		}
		tail = cell
	}
}

// readQuote reads 'x as (quote x).
func (r *Reader) readQuote(start celisp.Position) (runtime.CellRef, error) {
	ch, err := r.skipSpace()
	if err == io.EOF {
		return runtime.Nil, r.errorf(start, io.ErrUnexpectedEOF, "end of input after quote")
	} else if err != nil {
		return runtime.Nil, err
	}
	r.back()
	if ch == ')' {
		return runtime.Nil, r.errorf(start, nil, "quote without expression")
	}
	x, err := r.read()
	if err != nil {
		return runtime.Nil, err
	}
	h := r.heap
	frame := h.EnterFrame("read-quote")
	defer frame.Leave()
	quoted := frame.Protect(h.MakeCons(x, runtime.Nil))
	q := h.MakeSymbolRef(r.quote)
	return h.MakeCons(q, quoted.Get()), nil
}

func (r *Reader) readAtom(start celisp.Position) (runtime.CellRef, error) {
	var b strings.Builder
	for {
		ch, err := r.next()
		if err == io.EOF {
			break
		} else if err != nil {
			return runtime.Nil, err
		}
		if isDelimiter(ch) {
			r.back()
			break
		}
		b.WriteRune(ch)
	}
	token := b.String()
	switch token {
	case "nil":
		return runtime.Nil, nil
	case "t":
		return runtime.True, nil
	}
	if isNumber(token) {
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return runtime.Nil, r.errorf(start, err, "number out of range: %s", token)
		}
		tracer().Debugf("read number %d", n)
		return r.heap.MakeNumber(n), nil
	}
	tracer().Debugf("read symbol %s", token)
	return r.heap.MakeSymbol(token), nil
}

// isNumber is a predicate: is token an optional minus sign followed by digits?
func isNumber(token string) bool {
	digits := strings.TrimPrefix(token, "-")
	if digits == "" {
		return false
	}
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
