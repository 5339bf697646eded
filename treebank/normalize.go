package treebank

import (
	"regexp"
	"strings"

	"github.com/npillmayer/pcfg/tree"
)

// Labels like -NONE- are kept, otherwise everything from the first '-' or '='
// is cut.
var baseCategoryRE = regexp.MustCompile(`^(-[^-]+-|[^-=]+)`)

// BaseCategory strips functional tags and indices from a category label:
// "NP-SBJ-1" becomes "NP", "NP=2" becomes "NP", "-NONE-" stays "-NONE-".
func BaseCategory(label string) string {
	if m := baseCategoryRE.FindStringSubmatch(label); m != nil {
		return m[1]
	}
	return label
}

// StripFunctionTags returns a copy of t with every category reduced to its
// base category. Words are left untouched.
func StripFunctionTags(t *tree.Tree) *tree.Tree {
	c := t.Copy()
	c.Walk(func(node *tree.Tree, depth int) bool {
		if !node.IsLeaf() {
			node.Label = BaseCategory(node.Label)
		}
		return true
	})
	return c
}

// ChomskyNormalForm returns a right-factored binarization of t. A node
// A with children B C D E becomes
//
//     (A B (A|<C-D-E> C (A|<D-E> D E)))
//
// Unary nodes are left as they are.
func ChomskyNormalForm(t *tree.Tree) *tree.Tree {
	c := t.Copy()
	c.Walk(func(node *tree.Tree, depth int) bool {
		if node.IsLeaf() || node.IsPreterminal() {
			return false
		}
		binarize(node)
		return true
	})
	return c
}

func binarize(node *tree.Tree) {
	n := len(node.Children)
	if n <= 2 {
		return
	}
	labels := make([]string, n)
	for i, ch := range node.Children {
		labels[i] = ch.Label
	}
	children := node.Children
	cur := node
	for i := 1; i < n-1; i++ {
		factored := tree.New(node.Label + tree.FactorMarker + "<" + strings.Join(labels[i:], "-") + ">")
		cur.Children = []*tree.Tree{children[i-1], factored}
		cur = factored
	}
	cur.Children = []*tree.Tree{children[n-2], children[n-1]}
}

// Normalize prepares a treebank tree for training: categories are reduced
// to base categories and the tree is converted to Chomsky Normal Form.
// t is not modified.
func Normalize(t *tree.Tree) *tree.Tree {
	return ChomskyNormalForm(StripFunctionTags(t))
}
