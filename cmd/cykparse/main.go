/*
Command cykparse trains probabilistic context-free grammars from a treebank
and parses sentences with them.

    cykparse split  -corpus <dir> -train <ids> -test <ids> [-ratio 0.9] [-seed 1]
    cykparse train  -corpus <dir> -train <ids> -model <grammar.txt>
    cykparse test   -corpus <dir> -test <ids> -model <grammar.txt> -out <dir> [-runs n -run i] [-db <results.db>]
    cykparse stitch -out <dir>
    cykparse export -db <results.db> [-runid n] -out <dir>
    cykparse parse  -model <grammar.txt> -sent "The dog barks"
    cykparse repl   -model <grammar.txt>

Every command accepts flags -config <file.yaml> and -trace <Debug|Info|Error>.
Settings missing from the command line are taken from the configuration file,
which may hold any flag name as a key:

    corpus: ./treebank/combined
    model: grammar.txt
    out: ./output
    runs: 4
    trace: Info
    panic-on-chart-corruption: false

If no configuration file is given, cykparse looks for one in the user's
configuration folders (e.g., ~/.config/cykparse/config.yaml).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

// tracer traces with key 'pcfg.cli'.
func tracer() tracing.Trace {
	return tracing.Select("pcfg.cli")
}

func main() {
	initDisplay()
	app := &commander.Command{
		UsageLine: "cykparse <command> [options]",
		Short:     "trains PCFGs from treebanks and parses sentences with them",
		Flag:      *flag.NewFlagSet("cykparse", flag.ExitOnError),
		Subcommands: []*commander.Command{
			splitCmd(),
			trainCmd(),
			testCmd(),
			stitchCmd(),
			exportCmd(),
			parseCmd(),
			replCmd(),
		},
	}
	if err := app.Dispatch(os.Args[1:]); err != nil {
		gtrace.CommandTracer.Errorf("%v", err)
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// --- Common flags ----------------------------------------------------------

var (
	configFile string
	traceLevel string
)

// newCommand creates a sub-command with flags -config and -trace.
func newCommand(name string, run func(*commander.Command, []string) error,
	usage, short, long string) *commander.Command {
	//
	cmd := &commander.Command{
		Run:       run,
		UsageLine: name + " " + usage,
		Short:     short,
		Long:      fmt.Sprintf("\n%s\n\n\t$ cykparse %s %s\n\n", long, name, usage),
		Flag:      *flag.NewFlagSet(name, flag.ExitOnError),
	}
	cmd.Flag.StringVar(&configFile, "config", "", "YAML configuration file")
	cmd.Flag.StringVar(&traceLevel, "trace", "", "Trace level [Debug|Info|Error]")
	return cmd
}

// verifyFlags checks that a setting is present for all keys, either from
// the command line or from the configuration.
func verifyFlags(cmd *commander.Command, keys ...string) error {
	for _, key := range keys {
		f := cmd.Flag.Lookup(key)
		if f == nil {
			return errors.Errorf("unknown setting %q", key)
		}
		if f.Value.String() == "" || f.Value.String() == "0" {
			return errors.Errorf("missing setting -%s (%s)", key, f.Usage)
		}
	}
	return nil
}
