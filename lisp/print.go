package lisp

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/celisp/runtime"
)

// Print writes the external representation of ref to w:
//
//    nil, t, 42, foo, <procedure>, (a b c), (a . b)
//
// Lists which contain themselves are cut with "...".
func Print(w io.Writer, h *runtime.Heap, ref runtime.CellRef) error {
	bw := bufio.NewWriter(w)
	p := printer{h: h, w: bw, path: make(map[runtime.CellRef]bool)}
	p.print(ref)
	return bw.Flush()
}

// Sprint returns the external representation of ref as a string.
func Sprint(h *runtime.Heap, ref runtime.CellRef) string {
	var b strings.Builder
	_ = Print(&b, h, ref)
	return b.String()
}

type printer struct {
	h    *runtime.Heap
	w    *bufio.Writer
	path map[runtime.CellRef]bool // pairs on the way from the top to the current list
}

func (p *printer) print(ref runtime.CellRef) {
	switch p.h.Tag(ref) {
	case runtime.NilTag:
		p.w.WriteString("nil")
	case runtime.TrueTag:
		p.w.WriteString("t")
	case runtime.NumberTag:
		p.w.WriteString(strconv.FormatInt(p.h.Value(ref), 10))
	case runtime.SymbolTag:
		p.w.WriteString(p.h.Symbol(ref).Name())
	case runtime.ClosureTag:
		p.w.WriteString("<procedure>")
	case runtime.ConsTag:
		p.printList(ref)
	}
}

func (p *printer) printList(ref runtime.CellRef) {
	if p.path[ref] {
		p.w.WriteString("...")
		return
	}
	var visited []runtime.CellRef
	defer func() {
		for _, c := range visited {
			delete(p.path, c)
		}
	}()
	p.w.WriteByte('(')
	l := ref
	for {
		p.path[l] = true
		visited = append(visited, l)
		p.print(p.h.First(l))
		l = p.h.Rest(l)
		if l == runtime.Nil {
			break
		}
		if !p.h.IsCons(l) {
			p.w.WriteString(" . ")
			p.print(l)
			break
		}
		p.w.WriteByte(' ')
		if p.path[l] {
			p.w.WriteString("...")
			break
		}
	}
	p.w.WriteByte(')')
}
