package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/celisp/lisp"
	"github.com/npillmayer/celisp/lisp/reader"
	"github.com/npillmayer/celisp/runtime"
	"github.com/pterm/pterm"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

const (
	prompt     = "lisp> "
	contPrompt = "  ... "
)

type repl struct {
	intp *lisp.Interpreter
	rl   *readline.Instance
}

// loop reads lines until <ctrl>D or :quit. Lines are collected until all
// opened lists are closed, then the collected input is evaluated.
func (r *repl) loop() {
	var buf strings.Builder
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			buf.Reset()
			r.rl.SetPrompt(prompt)
			continue
		} else if err != nil { // io.EOF
			break
		}
		if buf.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				if quit := r.command(trimmed); quit {
					break
				}
				continue
			}
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
		if !complete(buf.String()) {
			r.rl.SetPrompt(contPrompt)
			continue
		}
		r.eval(buf.String())
		buf.Reset()
		r.rl.SetPrompt(prompt)
	}
}

func (r *repl) eval(input string) {
	out := &display{}
	if err := r.intp.Run(strings.NewReader(input), out); err != nil {
		pterm.Error.Println(err.Error())
	}
	out.flush()
}

// command executes a REPL command. It returns true if the REPL should quit.
func (r *repl) command(line string) bool {
	cmd, arg := line, ""
	if i := strings.IndexAny(line, " \t"); i > 0 {
		cmd, arg = line[:i], strings.TrimSpace(line[i:])
	}
	h := r.intp.Heap()
	switch cmd {
	case ":quit", ":q":
		return true
	case ":stats":
		showStats(h)
	case ":gc":
		before := h.Free()
		free := h.Collect()
		pterm.Info.Println(fmt.Sprintf("collected %d cells, %d free", free-before, free))
	case ":symbols":
		names := h.Symbols().Names()
		pterm.Info.Println(fmt.Sprintf("%d symbols: %s", len(names), strings.Join(names, " ")))
	case ":tree":
		r.tree(arg)
	default:
		pterm.Error.Println("unknown command " + cmd)
	}
	return false
}

func showStats(h *runtime.Heap) {
	st := h.Stats()
	pterm.Info.Println(fmt.Sprintf("heap:        %d cells, %d used, %d free", st.Size, st.Used, st.Free))
	pterm.Info.Println(fmt.Sprintf("collections: %d, last reclaimed %d cells", st.Collections, st.LastReclaimed))
	pterm.Info.Println(fmt.Sprintf("roots:       %d", st.Roots))
	fp, err := h.Fingerprint()
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	pterm.Info.Println("fingerprint: " + fp)
}

// tree is a helper command to display a value as a tree on a terminal.
func (r *repl) tree(input string) {
	rd := r.intp.NewReader(strings.NewReader(input), reader.WithSourceName("tree"))
	expr, err := rd.Read()
	if err == io.EOF {
		pterm.Error.Println("usage: :tree <expr>")
		return
	} else if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	v, err := r.intp.Eval(expr)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	pterm.Println(input)
	root := pterm.NewTreeFromLeveledList(leveledList(r.intp.Heap(), v))
	pterm.DefaultTree.WithRoot(root).Render()
}

// leveledList flattens a value into pterm's leveled list representation. Pairs
// which have already been visited are shown as "...".
func leveledList(h *runtime.Heap, v runtime.CellRef) pterm.LeveledList {
	visited := make(map[runtime.CellRef]bool)
	return leveledElem(h, v, pterm.LeveledList{}, 0, visited)
}

func leveledElem(h *runtime.Heap, v runtime.CellRef, ll pterm.LeveledList, level int,
	visited map[runtime.CellRef]bool) pterm.LeveledList {
	//
	if !h.IsCons(v) {
		return append(ll, pterm.LeveledListItem{Level: level, Text: lisp.Sprint(h, v)})
	}
	if visited[v] {
		return append(ll, pterm.LeveledListItem{Level: level, Text: "..."})
	}
	ll = append(ll, pterm.LeveledListItem{Level: level, Text: "( )"})
	for l := v; l != runtime.Nil; l = h.Rest(l) {
		if !h.IsCons(l) {
			return append(ll, pterm.LeveledListItem{Level: level + 1, Text: ". " + lisp.Sprint(h, l)})
		}
		if visited[l] {
			return append(ll, pterm.LeveledListItem{Level: level + 1, Text: "..."})
		}
		visited[l] = true
		ll = leveledElem(h, h.First(l), ll, level+1, visited)
	}
	return ll
}

// ---------------------------------------------------------------------------

// display receives the output of an interpreter session and shows it line by
// line, diagnostics in error style.
type display struct {
	buf    bytes.Buffer
	quiet  bool // show diagnostics only
	errors int
}

func (d *display) Write(p []byte) (int, error) {
	d.buf.Write(p)
	for {
		i := bytes.IndexByte(d.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(d.buf.Next(i + 1))
		d.show(strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}

func (d *display) flush() {
	if d.buf.Len() > 0 {
		d.show(d.buf.String())
		d.buf.Reset()
	}
}

func (d *display) show(line string) {
	if strings.HasPrefix(line, "error: ") {
		d.errors++
		pterm.Error.Println(strings.TrimPrefix(line, "error: "))
		return
	}
	if !d.quiet {
		pterm.Info.Println(line)
	}
}
