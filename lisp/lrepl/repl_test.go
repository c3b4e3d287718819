package main

import (
	"strings"
	"testing"

	"github.com/npillmayer/celisp/lisp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/pterm/pterm"
)

func TestComplete(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.repl")
	defer teardown()
	//
	for _, c := range []struct {
		input string
		ok    bool
	}{
		{"(+ 1 2)", true},
		{"42", true},
		{"(define f (lambda (x)", false},
		{"(define f (lambda (x)\n  (* x x)))", true},
		{"(a ; (unbalanced in comment\n", false},
		{"(a) ; (\n", true},
		{"'", false},
		{"'a", true},
		{"(a))", true},
		{"", true},
	} {
		if ok := complete(c.input); ok != c.ok {
			t.Errorf("complete(%q): expected %v, have %v", c.input, c.ok, ok)
		}
	}
}

func TestLeveledList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.repl")
	defer teardown()
	//
	intp := lisp.NewInterpreter(lisp.WithHeapSize(200))
	defer intp.Close()
	v, err := intp.EvalString("'(1 (2 3) 4)")
	if err != nil {
		t.Fatal(err)
	}
	ll := leveledList(intp.Heap(), v)
	expected := []pterm.LeveledListItem{
		{Level: 0, Text: "( )"},
		{Level: 1, Text: "1"},
		{Level: 1, Text: "( )"},
		{Level: 2, Text: "2"},
		{Level: 2, Text: "3"},
		{Level: 1, Text: "4"},
	}
	if len(ll) != len(expected) {
		t.Fatalf("expected %d items, have %d: %v", len(expected), len(ll), ll)
	}
	for i, item := range expected {
		if ll[i] != item {
			t.Errorf("item %d: expected %v, have %v", i, item, ll[i])
		}
	}
}

func TestDisplayCountsErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "celisp.repl")
	defer teardown()
	//
	intp := lisp.NewInterpreter(lisp.WithHeapSize(200))
	defer intp.Close()
	out := &display{quiet: true}
	if err := intp.Run(strings.NewReader("(+ 1 2) foo (car 1) )"), out); err != nil {
		t.Fatal(err)
	}
	if out.errors != 3 {
		t.Errorf("expected 3 diagnostics, have %d", out.errors)
	}
}
