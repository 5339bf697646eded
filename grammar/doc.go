/*
Package grammar implements the grammar model of a probabilistic context-free
grammar (PCFG).

A model is a collection of rules, one per head symbol. Each rule maps a body
(either a single symbol or two symbols separated by a blank) to a score.
During training, scores are occurence counts; after normalization they are
relative frequencies, i.e. probabilities summing to 1 for each head.

Training

Models are trained from a corpus of normalized trees (see package treebank):

    m := grammar.NewModel()
    if err := m.Train(corpus); err != nil { … }
    m.Normalize()
    m.InitializePriors()

Persistence

A model is stored as plain text, one line per rule body:

    S -> NP VP,0.8
    NP -> DT NN,0.35
    NN -> dog,0.0012
    CD -> <NUM>,0.97

Loading a model normalizes its rules and computes the priors for unknown
words, thus a loaded model is ready for parsing.

Priors

For tokens not matched by any lexical rule, the parser falls back to a prior
distribution over non-terminals. The prior of a non-terminal is the share of
its probability mass spent on lexical expansions, renormalized over all
non-terminals.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pcfg.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("pcfg.grammar")
}
