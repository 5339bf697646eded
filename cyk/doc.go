/*
Package cyk implements a parallel CYK chart parser for PCFGs.

The parser fills a triangular chart of spans bottom-up. Spans of length 1
are resolved from the words of the input: lexical rules match the word,
unary rules propagate matches up to their heads, and unknown words are
seeded with the priors of the grammar model. Spans of length 2 and above are
combined from pairs of adjacent sub-spans by binary rules.

All spans of the same length are independent of each other, so the chart is
filled in wavefronts: every span length is a level, the spans of a level are
computed concurrently, and a level is complete before the next one starts.
Every cell of the chart carries its own lock.

Usage

    model, err := grammar.Load("grammar.txt")
    …
    parser := cyk.NewParser(model, cyk.Workers(8))
    result, err := parser.Parse([]string{"The", "dog", "barks"})
    if errors.Is(err, cyk.ErrNoParse) {
        …
    }
    fmt.Println(result.Tree)

Within a cell a non-terminal keeps the first entry with the highest
probability. Candidates are tried in order of the rules of the model,
the bodies of a rule and the split points of a span, from left to right.
The parse result is therefore deterministic, independent of the number of
workers.

Configuration

If flag `panic-on-chart-corruption` is set (see package
github.com/npillmayer/schuko/gconf), inconsistencies found during tree
extraction will panic instead of returning an error.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cyk

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pcfg.cyk'.
func tracer() tracing.Trace {
	return tracing.Select("pcfg.cyk")
}
