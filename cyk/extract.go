package cyk

import (
	"github.com/npillmayer/pcfg"
	"github.com/npillmayer/pcfg/tree"
	"github.com/npillmayer/schuko/gconf"
	"github.com/pkg/errors"
)

// BuildTree extracts the derivation of sym on span from the chart.
//
// A leaf backpointer must sit on a span of length 1 and yields a
// pre-terminal over the word. A unary backpointer continues on the same
// span, a binary backpointer on both sub-spans.
func (c *Chart) BuildTree(sym string, span pcfg.Span) (*tree.Tree, error) {
	return c.build(sym, span, 0)
}

// chain counts the unary steps taken on the current span.
func (c *Chart) build(sym string, span pcfg.Span, chain int) (*tree.Tree, error) {
	e, found, err := c.Entry(span, sym)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(ErrInvalidBackpointer, "no entry for %s on %v", sym, span)
	}
	bp := e.Back
	switch bp.Kind {
	case LeafBP:
		if span.Len() != 1 {
			return nil, errors.Wrapf(ErrInvalidBackpointer, "leaf %s:%v on span of length %d",
				sym, span, span.Len())
		}
		return tree.New(sym, tree.Leaf(bp.Token)), nil
	case UnaryBP:
		if bp.Left.Span != span {
			return nil, errors.Wrapf(ErrInvalidBackpointer, "unary %s:%v → %v", sym, span, bp.Left)
		}
		if chain > len(c.Cell(span.From(), span.To())) {
			return nil, errors.Wrapf(ErrInvalidBackpointer, "unary cycle at %s:%v", sym, span)
		}
		child, err := c.build(bp.Left.Symbol, span, chain+1)
		if err != nil {
			return nil, err
		}
		return tree.New(sym, child), nil
	case BinaryBP:
		l, r := bp.Left.Span, bp.Right.Span
		if span.Len() < 2 || l.From() != span.From() || r.To() != span.To() ||
			l.To() != r.From() || l.Len() < 1 || r.Len() < 1 {
			return nil, errors.Wrapf(ErrInvalidBackpointer, "binary %s:%v → %v", sym, span, bp)
		}
		left, err := c.build(bp.Left.Symbol, l, 0)
		if err != nil {
			return nil, err
		}
		right, err := c.build(bp.Right.Symbol, r, 0)
		if err != nil {
			return nil, err
		}
		return tree.New(sym, left, right), nil
	}
	return nil, errors.Wrapf(ErrInvalidBackpointer, "%s:%v has backpointer of kind %v", sym, span, bp.Kind)
}

// corrupted reports an inconsistent chart. It panics if configuration flag
// panic-on-chart-corruption is set.
func corrupted(err error) error {
	tracer().Errorf("chart corrupted: %v", err)
	if gconf.GetBool("panic-on-chart-corruption") {
		panic(`CYK chart is corrupted.

Configuration flag panic-on-chart-corruption is set to true. It is aimed at helping
to debug the parser and do a post-mortem of an inconsistent chart. However, if this
is a production environment and you did not expect this to panic, please unset
panic-on-chart-corruption to its default (false).

` + err.Error())
	}
	return err
}
