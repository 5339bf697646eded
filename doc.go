/*
Package pcfg is a toolbox for probabilistic context-free grammars.

It induces a PCFG from a treebank by relative-frequency estimation and
parses sentences into their most probable constituency tree with a
parallel CYK chart parser. Package structure is as follows:

■ grammar: Package grammar holds the grammar model: rules, training by
counting, normalization, text persistence and priors for unknown words.

■ cyk: Package cyk implements the chart and the CYK parser, filling the chart
in parallel wavefronts of increasing span length.

■ tree: Package tree provides the constituency tree type produced by the
parser and read from treebanks.

■ treebank: Package treebank reads Penn-Treebank style bracketed trees,
normalizes categories and converts trees to Chomsky Normal Form.

■ batch: Package batch runs a parser over a test corpus and collects gold and
derived trees. Results may be kept in an SQLite database (internal/store).

■ cmd/cykparse: Command cykparse trains grammars and parses test sets or
single sentences from the command line.

The base package contains data types which are used throughout all the other
packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package pcfg
