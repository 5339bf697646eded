package main

import (
	"strings"

	"github.com/chzyer/readline"
	"github.com/gonuts/commander"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"

	"github.com/npillmayer/pcfg/cyk"
	"github.com/npillmayer/pcfg/grammar"
)

var (
	sentence string
	showCNF  bool
)

// --- parse -----------------------------------------------------------------

func parseCmd() *commander.Command {
	cmd := newCommand("parse", runParse,
		"-model <grammar.txt> -sent \"The dog barks\"",
		"parses a single sentence",
		"parses a sentence and prints the most probable parse tree")
	cmd.Flag.StringVar(&modelFile, "model", "", "Grammar file")
	cmd.Flag.StringVar(&sentence, "sent", "", "Sentence, tokens separated by blanks")
	cmd.Flag.StringVar(&startSym, "start", cyk.DefaultStartSymbol, "Start symbol")
	cmd.Flag.BoolVar(&unaryClose, "unary", false, "Apply unary rules to spans longer than 1")
	cmd.Flag.BoolVar(&showCNF, "cnf", false, "Show tree in Chomsky Normal Form")
	return cmd
}

func runParse(cmd *commander.Command, args []string) error {
	if err := setup(cmd); err != nil {
		return err
	}
	if sentence == "" {
		sentence = strings.Join(args, " ")
	}
	if err := verifyFlags(cmd, "model", "sent"); err != nil {
		return err
	}
	parser, err := loadParser()
	if err != nil {
		return err
	}
	return parseAndShow(parser, sentence)
}

func loadParser() (*cyk.Parser, error) {
	model, err := grammar.Load(modelFile)
	if err != nil {
		return nil, err
	}
	tracer().Infof("loaded grammar %s: %v", model.Fingerprint(), model.Stats())
	return cyk.NewParser(model, cyk.StartSymbol(startSym), cyk.UnaryClosure(unaryClose)), nil
}

func parseAndShow(parser *cyk.Parser, input string) error {
	tokens := strings.Fields(input)
	result, err := parser.Parse(tokens)
	if err != nil {
		if errors.Is(err, cyk.ErrNoParse) {
			pterm.Error.Println("no parse")
			return nil
		}
		return err
	}
	t := result.Tree
	if !showCNF {
		t = t.UnCNF()
	}
	if !result.StartReached {
		pterm.Info.Printf("start symbol %s not reached, root is %s\n", startSym, result.Root)
	}
	pterm.Info.Printf("probability %g\n", result.Prob)
	pterm.Println(t.String())
	t.Render()
	return nil
}

// --- repl ------------------------------------------------------------------

func replCmd() *commander.Command {
	cmd := newCommand("repl", runREPL,
		"-model <grammar.txt>",
		"parses sentences interactively",
		"reads sentences line by line and prints their most probable parse trees.\nQuit with <ctrl>D")
	cmd.Flag.StringVar(&modelFile, "model", "", "Grammar file")
	cmd.Flag.StringVar(&startSym, "start", cyk.DefaultStartSymbol, "Start symbol")
	cmd.Flag.BoolVar(&unaryClose, "unary", false, "Apply unary rules to spans longer than 1")
	cmd.Flag.BoolVar(&showCNF, "cnf", false, "Show trees in Chomsky Normal Form")
	return cmd
}

func runREPL(cmd *commander.Command, args []string) error {
	if err := setup(cmd); err != nil {
		return err
	}
	if err := verifyFlags(cmd, "model"); err != nil {
		return err
	}
	parser, err := loadParser()
	if err != nil {
		return err
	}
	repl, err := readline.New("cyk> ")
	if err != nil {
		return errors.Wrap(err, "cannot start REPL")
	}
	defer repl.Close()
	pterm.Info.Println("Welcome to the CYK parser")
	tracer().Infof("Quit with <ctrl>D")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if err := parseAndShow(parser, line); err != nil {
			pterm.Error.Println(err.Error())
		}
	}
	println("Good bye!")
	return nil
}
