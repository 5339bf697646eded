package cyk

import "github.com/npillmayer/pcfg"

// resolveLeaf fills the cell of the word at position start.
//
// Lexical matches and unary chains are applied repeatedly until a pass
// over all rules does not change the cell any more. If already the first
// pass yields nothing, the word is unknown to the grammar and the cell
// is seeded with the priors of the model instead.
func (p *Parser) resolveLeaf(c *Chart, start int) {
	span := pcfg.Span{start, start + 1}
	c.open(span.From(), span.To())
	if p.closeUnary(c, span, true) {
		return
	}
	token := c.tokens[start]
	tracer().Debugf("unknown word %q at %d, seeding %d priors", token, start, len(p.priors))
	for _, prior := range p.priors {
		c.Update(span.From(), span.To(), prior.Symbol, Leaf(token), prior.Prob)
	}
}

// closeUnary runs passes of unary propagation over span until the cell does
// not change any more. With lexical set, bodies matching the word of a
// length-1 span are applied as well. It returns true if the first pass has
// changed the cell.
func (p *Parser) closeUnary(c *Chart, span pcfg.Span, lexical bool) bool {
	start, end := span.From(), span.To()
	var token string
	if lexical {
		token = c.tokens[start]
	}
	first := false
	for pass := 1; ; pass++ {
		if pass > len(p.rules)+1 {
			// only possible with scores > 1
			tracer().Errorf("unary closure on %v does not converge, stopping", span)
			break
		}
		changed := false
		for _, rule := range p.rules {
			for _, b := range rule.bodies {
				if len(b.symbols) != 1 {
					continue
				}
				if lexical && pcfg.MatchesLexical(b.body, token) {
					if c.Update(start, end, rule.head, Leaf(token), b.score) {
						changed = true
					}
				}
				if pc := c.Prob(start, end, b.body); pc >= 0 {
					if c.Update(start, end, rule.head, Unary(b.body, span), pc*b.score) {
						changed = true
					}
				}
			}
		}
		if pass == 1 {
			first = changed
		}
		if !changed {
			break
		}
	}
	return first
}
