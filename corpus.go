package pcfg

import "strings"

// --- Productions -----------------------------------------------------------

// Production is a single rule application as found in a (normalized) training
// tree, e.g.
//
//     NP -> DT NN         // Body = ["DT", "NN"]
//     NN -> dog           // Body = ["dog"], Lexical = true
//
type Production struct {
	Head    string
	Body    []string
	Lexical bool // body is a terminal word
}

// Arity returns the number of body symbols.
func (p Production) Arity() int {
	return len(p.Body)
}

func (p Production) String() string {
	return p.Head + " -> " + strings.Join(p.Body, BodySeparator)
}

// Derivation is the interface of normalized training trees. Trees are expected
// to be in Chomsky Normal Form, i.e. every production has one or two body
// symbols.
type Derivation interface {
	Productions() []Production
}

// --- Training input ----------------------------------------------------------

// Example is a training or test record as delivered by a corpus.
type Example struct {
	SourceID string     // corpus file the sentence stems from
	Index    int        // position of the sentence within its source
	Tokens   []string   // the raw sentence
	Tree     Derivation // normalized tree
}

// Corpus is a lazy, finite sequence of examples. It can be iterated once:
//
//     for corpus.Next() {
//         ex := corpus.Example()
//         …
//     }
//     if err := corpus.Err(); err != nil { … }
//
type Corpus interface {
	Next() bool
	Example() Example
	Err() error
}

// SliceCorpus is a Corpus over examples held in memory.
type SliceCorpus struct {
	examples []Example
	pos      int
}

var _ Corpus = (*SliceCorpus)(nil)

// NewSliceCorpus creates a corpus iterating over the given examples.
func NewSliceCorpus(examples ...Example) *SliceCorpus {
	return &SliceCorpus{examples: examples, pos: -1}
}

// Next is part of interface Corpus.
func (c *SliceCorpus) Next() bool {
	if c.pos+1 >= len(c.examples) {
		c.pos = len(c.examples)
		return false
	}
	c.pos++
	return true
}

// Example is part of interface Corpus.
func (c *SliceCorpus) Example() Example {
	if c.pos < 0 || c.pos >= len(c.examples) {
		return Example{}
	}
	return c.examples[c.pos]
}

// Err is part of interface Corpus. A slice corpus never fails.
func (c *SliceCorpus) Err() error {
	return nil
}
