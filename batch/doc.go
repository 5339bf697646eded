/*
Package batch runs a CYK parser over a test corpus.

A Runner reads the examples of a corpus and distributes them to a number of
workers. Every worker parses one sentence at a time, each sentence with a
chart of its own. The outcome of every sentence is handed to a Sink.
Sinks write gold and derived trees to per-worker files (FileSink), record
them in a result database (StoreSink), or both (MultiSink).

Per-worker files of one or more runs are merged with Stitch:

    folder/gold-1-0.txt    folder/result-1-0.txt
    folder/gold-1-1.txt    folder/result-1-1.txt
    …
      ⇒ folder/gold.txt    folder/result.txt

Line i of gold.txt holds the normalized treebank tree of the sentence which
has been parsed into line i of result.txt. Sentences without a parse do not
show up in either file.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package batch

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pcfg.batch'.
func tracer() tracing.Trace {
	return tracing.Select("pcfg.batch")
}
