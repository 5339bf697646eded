/*
Package tree implements constituency trees.

Trees are produced by the CYK parser (package cyk) and read from treebanks
(package treebank). Inner nodes carry a category label, leaves carry a word.
A tree prints in one-line bracketed notation:

    (S (NP (DT the) (NN dog)) (VP barks))

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"strings"

	"github.com/npillmayer/pcfg"
)

// FactorMarker separates the parent label from the siblings list in labels of
// nodes introduced by binarization, as in "NP|<DT-JJ-NN>".
const FactorMarker = "|"

// Tree is a node of a constituency tree. A node without children is a leaf,
// and its label is a word of the sentence.
type Tree struct {
	Label    string
	Children []*Tree
}

// New creates an inner node.
func New(label string, children ...*Tree) *Tree {
	return &Tree{Label: label, Children: children}
}

// Leaf creates a leaf node for a word.
func Leaf(word string) *Tree {
	return &Tree{Label: word}
}

// IsLeaf is a predicate: is this node a word?
func (t *Tree) IsLeaf() bool {
	return len(t.Children) == 0
}

// IsPreterminal is a predicate: does this node dominate exactly one word?
func (t *Tree) IsPreterminal() bool {
	return len(t.Children) == 1 && t.Children[0].IsLeaf()
}

// Append adds children to the right.
func (t *Tree) Append(children ...*Tree) *Tree {
	t.Children = append(t.Children, children...)
	return t
}

// String returns the tree in one-line bracketed notation.
func (t *Tree) String() string {
	if t == nil {
		return "()"
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tree) write(b *strings.Builder) {
	if t.IsLeaf() {
		b.WriteString(t.Label)
		return
	}
	b.WriteByte('(')
	b.WriteString(t.Label)
	for _, ch := range t.Children {
		b.WriteByte(' ')
		ch.write(b)
	}
	b.WriteByte(')')
}

// Leaves returns the words of a tree, from left to right.
func (t *Tree) Leaves() []string {
	var words []string
	t.Walk(func(node *Tree, depth int) bool {
		if node.IsLeaf() {
			words = append(words, node.Label)
		}
		return true
	})
	return words
}

// Walk visits the nodes of a tree in pre-order. If f returns false, the
// children of the node are skipped.
func (t *Tree) Walk(f func(node *Tree, depth int) bool) {
	t.walk(f, 0)
}

func (t *Tree) walk(f func(*Tree, int) bool, depth int) {
	if !f(t, depth) {
		return
	}
	for _, ch := range t.Children {
		ch.walk(f, depth+1)
	}
}

// Productions lists the productions of a tree in pre-order. A production is
// lexical if its body consists of words.
//
// Tree implements pcfg.Derivation.
func (t *Tree) Productions() []pcfg.Production {
	var prods []pcfg.Production
	t.Walk(func(node *Tree, depth int) bool {
		if node.IsLeaf() {
			return false
		}
		p := pcfg.Production{Head: node.Label, Body: make([]string, len(node.Children))}
		for i, ch := range node.Children {
			p.Body[i] = ch.Label
			if ch.IsLeaf() {
				p.Lexical = true
			}
		}
		prods = append(prods, p)
		return true
	})
	return prods
}

var _ pcfg.Derivation = (*Tree)(nil)

// Copy creates a deep copy of a tree.
func (t *Tree) Copy() *Tree {
	if t == nil {
		return nil
	}
	c := &Tree{Label: t.Label}
	if len(t.Children) > 0 {
		c.Children = make([]*Tree, len(t.Children))
		for i, ch := range t.Children {
			c.Children[i] = ch.Copy()
		}
	}
	return c
}

// Equal is a predicate: do two trees have the same structure and labels?
func (t *Tree) Equal(other *Tree) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Label != other.Label || len(t.Children) != len(other.Children) {
		return false
	}
	for i, ch := range t.Children {
		if !ch.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// UnCNF reverts a binarization: every inner node whose label contains the
// FactorMarker is replaced by its children. The result is a new tree.
func (t *Tree) UnCNF() *Tree {
	c := t.Copy()
	c.unfactor()
	return c
}

func (t *Tree) unfactor() {
	for _, ch := range t.Children {
		ch.unfactor()
	}
	children := make([]*Tree, 0, len(t.Children))
	for _, ch := range t.Children {
		if !ch.IsLeaf() && strings.Contains(ch.Label, FactorMarker) {
			children = append(children, ch.Children...)
			continue
		}
		children = append(children, ch)
	}
	t.Children = children
}
