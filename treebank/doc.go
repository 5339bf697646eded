/*
Package treebank reads and normalizes Penn Treebank style parse trees.

Treebank files contain one or more trees in bracketed notation, e.g.

    ( (S
        (NP-SBJ (NNP Pierre) (NNP Vinken))
        (VP (MD will)
          (VP (VB join)
            (NP (DT the) (NN board)))))
    )

The top bracket without a label is removed when reading.

Before trees are used for training a PCFG, they are normalized: functional
tags and indices are cut from the categories (NP-SBJ-1 becomes NP) and the
trees are binarized to Chomsky Normal Form. Binarization is right-factored,
with new categories of the form

    NP|<JJ-NN>

naming the parent category and the siblings covered by the new node.
Package tree can revert this with tree.UnCNF.

FileCorpus delivers the sentences of a list of treebank files as a
pcfg.Corpus. There are helpers for managing lists of file IDs, as used for
training/test splits and for distributing a test set over several runs.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package treebank

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pcfg.treebank'.
func tracer() tracing.Trace {
	return tracing.Select("pcfg.treebank")
}
