package treebank

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token types of bracketed tree notation.
const (
	tokEOF int = iota
	tokOpen
	tokClose
	tokAtom
)

type token struct {
	kind      int
	text      string
	line, col int
}

var lexer struct {
	once sync.Once
	lm   *lexmachine.Lexer
	err  error
}

// bracketLexer returns the lexer for bracketed trees, compiling it on first use.
// Atoms are everything between whitespace and brackets.
func bracketLexer() (*lexmachine.Lexer, error) {
	lexer.once.Do(func() {
		lm := lexmachine.NewLexer()
		lm.Add([]byte(`\(`), makeToken(tokOpen))
		lm.Add([]byte(`\)`), makeToken(tokClose))
		lm.Add([]byte(`[^\(\) \t\r\n]+`), makeToken(tokAtom))
		lm.Add([]byte(`( |\t|\n|\r)+`), skip)
		if err := lm.Compile(); err != nil {
			tracer().Errorf("error compiling DFA: %v", err)
			lexer.err = errors.Wrap(err, "cannot compile treebank lexer")
			return
		}
		lexer.lm = lm
	})
	return lexer.lm, lexer.err
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(kind int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(kind, string(m.Bytes), m), nil
	}
}

// tokenize splits bracketed text into tokens. The last token is always of
// kind tokEOF.
func tokenize(input []byte) ([]token, error) {
	lm, err := bracketLexer()
	if err != nil {
		return nil, err
	}
	scanner, err := lm.Scanner(input)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create scanner")
	}
	var tokens []token
	for tok, err, eof := scanner.Next(); !eof; tok, err, eof = scanner.Next() {
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				return nil, errors.Wrapf(ErrSyntax, "unexpected input at line %d, column %d",
					ui.FailLine, ui.FailColumn)
			}
			return nil, err
		}
		t := tok.(*lexmachine.Token)
		tokens = append(tokens, token{
			kind: t.Type,
			text: string(t.Lexeme),
			line: t.StartLine,
			col:  t.StartColumn,
		})
	}
	return append(tokens, token{kind: tokEOF}), nil
}
