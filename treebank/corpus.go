package treebank

import (
	"path/filepath"

	"github.com/npillmayer/pcfg"
	"github.com/npillmayer/pcfg/tree"
)

// FileCorpus is a pcfg.Corpus over the sentences of a list of treebank files.
// Files are read one at a time, when the iteration reaches them.
//
// Examples carry the normalized tree (see Normalize) and the words of the
// sentence. The tree as found in the treebank is available with GoldTree.
type FileCorpus struct {
	dir     string
	files   []string
	fileInx int
	trees   []*tree.Tree // trees of the current file
	treeInx int
	example pcfg.Example
	gold    *tree.Tree
	err     error
}

var _ pcfg.Corpus = (*FileCorpus)(nil)

// NewFileCorpus creates a corpus for files, given by their IDs (names relative
// to dir).
func NewFileCorpus(dir string, files []string) *FileCorpus {
	return &FileCorpus{dir: dir, files: files, treeInx: -1}
}

// Next advances to the next sentence. It returns false at the end of the
// corpus or on error.
func (c *FileCorpus) Next() bool {
	if c.err != nil {
		return false
	}
	c.treeInx++
	for c.treeInx >= len(c.trees) {
		if c.fileInx >= len(c.files) {
			return false
		}
		if c.fileInx%10 == 0 {
			tracer().Infof("processed %d of %d files", c.fileInx, len(c.files))
		}
		trees, err := ReadFile(filepath.Join(c.dir, c.files[c.fileInx]))
		if err != nil {
			c.err = err
			return false
		}
		c.trees, c.treeInx = trees, 0
		c.fileInx++
	}
	c.gold = c.trees[c.treeInx]
	c.example = pcfg.Example{
		SourceID: c.files[c.fileInx-1],
		Index:    c.treeInx,
		Tokens:   c.gold.Leaves(),
		Tree:     Normalize(c.gold),
	}
	return true
}

// Example returns the current sentence.
func (c *FileCorpus) Example() pcfg.Example {
	return c.example
}

// GoldTree returns the current sentence's tree as read from the treebank.
func (c *FileCorpus) GoldTree() *tree.Tree {
	return c.gold
}

// Err returns the first error which occured during iteration.
func (c *FileCorpus) Err() error {
	return c.err
}
