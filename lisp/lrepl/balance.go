package main

import (
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Input is complete as soon as every opened list is closed. We scan the
// accumulated lines with a small lexer which knows just enough of the syntax
// to not count parentheses inside comments.

const (
	tokOpen = iota + 1
	tokClose
	tokQuote
	tokAtom
)

var (
	lexer     *lexmachine.Lexer
	lexerErr  error
	lexerOnce sync.Once
)

func balanceLexer() (*lexmachine.Lexer, error) {
	lexerOnce.Do(func() {
		lexer = lexmachine.NewLexer()
		lexer.Add([]byte(`;[^\n]*`), skip)
		lexer.Add([]byte(`( |\t|\n|\r)+`), skip)
		lexer.Add([]byte(`\(`), token(tokOpen))
		lexer.Add([]byte(`\)`), token(tokClose))
		lexer.Add([]byte(`'`), token(tokQuote))
		lexer.Add([]byte(`[^ \t\n\r\(\);']+`), token(tokAtom))
		if lexerErr = lexer.Compile(); lexerErr != nil {
			tracer().Errorf("error compiling DFA: %v", lexerErr)
		}
	})
	return lexer, lexerErr
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func token(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// complete is a predicate: does input hold complete expressions only? Input
// with surplus closing parentheses counts as complete, the reader will report
// it.
func complete(input string) bool {
	l, err := balanceLexer()
	if err != nil {
		return true
	}
	scanner, err := l.Scanner([]byte(input))
	if err != nil {
		return true
	}
	depth, quoted := 0, false
	for {
		tok, err, eos := scanner.Next()
		if eos {
			break
		}
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				scanner.TC = ui.FailTC
				continue
			}
			return true
		}
		if tok == nil {
			continue
		}
		switch tok.(*lexmachine.Token).Type {
		case tokOpen:
			depth++
			quoted = false
		case tokClose:
			depth--
			quoted = false
		case tokQuote:
			quoted = true
		default:
			quoted = false
		}
	}
	return depth <= 0 && !quoted
}
