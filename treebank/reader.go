package treebank

import (
	"os"

	"github.com/npillmayer/pcfg/tree"
	"github.com/pkg/errors"
)

// ErrSyntax flags malformed bracketed text.
var ErrSyntax = errors.New("malformed tree")

// Parse reads all trees from bracketed text.
func Parse(input []byte) ([]*tree.Tree, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &treeParser{tokens: tokens}
	var trees []*tree.Tree
	for p.peek().kind != tokEOF {
		tok := p.peek()
		if tok.kind != tokOpen {
			return nil, p.errorf(tok, "expected '(', found %q", tok.text)
		}
		t, err := p.tree()
		if err != nil {
			return nil, err
		}
		if t.Label == "" && len(t.Children) == 1 && !t.Children[0].IsLeaf() {
			t = t.Children[0] // empty top bracketing
		}
		trees = append(trees, t)
	}
	return trees, nil
}

// ParseString reads a single tree from bracketed text.
func ParseString(s string) (*tree.Tree, error) {
	trees, err := Parse([]byte(s))
	if err != nil {
		return nil, err
	}
	if len(trees) != 1 {
		return nil, errors.Wrapf(ErrSyntax, "expected a single tree, found %d", len(trees))
	}
	return trees[0], nil
}

// ReadFile reads all trees from a treebank file.
func ReadFile(path string) ([]*tree.Tree, error) {
	input, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read treebank file")
	}
	trees, err := Parse(input)
	if err != nil {
		return nil, errors.Wrapf(err, "treebank file %s", path)
	}
	return trees, nil
}

// --- Recursive descent over tokens -----------------------------------------

type treeParser struct {
	tokens []token
	pos    int
}

func (p *treeParser) peek() token {
	return p.tokens[p.pos]
}

func (p *treeParser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *treeParser) errorf(tok token, format string, args ...interface{}) error {
	if tok.kind == tokEOF {
		return errors.Wrapf(ErrSyntax, "unexpected end of input: "+format, args...)
	}
	return errors.Wrapf(errors.Wrapf(ErrSyntax, format, args...),
		"line %d, column %d", tok.line, tok.col)
}

// tree reads '(' [label] { tree | word } ')'.
func (p *treeParser) tree() (*tree.Tree, error) {
	open := p.next()
	t := &tree.Tree{}
	if p.peek().kind == tokAtom {
		t.Label = p.next().text
	}
	for {
		tok := p.peek()
		switch tok.kind {
		case tokClose:
			p.next()
			if len(t.Children) == 0 {
				return nil, p.errorf(open, "empty constituent %q", t.Label)
			}
			return t, nil
		case tokOpen:
			child, err := p.tree()
			if err != nil {
				return nil, err
			}
			t.Append(child)
		case tokAtom:
			p.next()
			t.Append(tree.Leaf(tok.text))
		default:
			return nil, p.errorf(tok, "missing ')' for %q", t.Label)
		}
	}
}
