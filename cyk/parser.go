package cyk

import (
	"context"
	"runtime"
	"strings"

	"github.com/npillmayer/pcfg"
	"github.com/npillmayer/pcfg/grammar"
	"github.com/npillmayer/pcfg/tree"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultStartSymbol is the root symbol a parse tree should have.
const DefaultStartSymbol = "S"

// Parser is a CYK parser for a grammar model. It takes a snapshot of the
// rules of the model at creation time; the model must not be modified
// afterwards.
//
// A parser may be used from several goroutines at once. Every parse works on
// its own chart.
type Parser struct {
	rules   []compiledRule
	priors  []grammar.Prior
	workers int
	start   string
	unary   bool
}

// Option configures a parser.
type Option func(p *Parser)

// Workers sets the maximum number of goroutines filling a level of the chart.
// Default is runtime.GOMAXPROCS(0).
func Workers(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.workers = n
		}
	}
}

// StartSymbol sets the expected root symbol of parse trees.
// Default is DefaultStartSymbol.
func StartSymbol(sym string) Option {
	return func(p *Parser) {
		if sym != "" {
			p.start = sym
		}
	}
}

// UnaryClosure sets or clears the application of unary rules on spans of
// length 2 and above. Default is false: unary rules are applied on
// single words only.
func UnaryClosure(b bool) Option {
	return func(p *Parser) {
		p.unary = b
	}
}

// NewParser creates a parser for a normalized model.
func NewParser(model *grammar.Model, opts ...Option) *Parser {
	p := &Parser{
		workers: runtime.GOMAXPROCS(0),
		start:   DefaultStartSymbol,
	}
	for _, rule := range model.Rules() {
		p.rules = append(p.rules, compile(rule))
	}
	p.priors = append(p.priors, model.Priors()...)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of a successful parse.
type Result struct {
	Tree         *tree.Tree // most probable parse tree
	Prob         float64    // probability of Tree
	Root         string     // root symbol of Tree
	StartReached bool       // is Root the start symbol?
	Chart        *Chart     // chart of the parse
}

// Parse finds the most probable parse tree for a tokenized sentence.
//
// If the top cell of the chart stays empty, ErrNoParse is returned. If the
// start symbol does not span the whole sentence, the most probable symbol
// that does will be the root of the tree, and Result.StartReached is false.
func (p *Parser) Parse(tokens []string) (*Result, error) {
	return p.ParseContext(context.Background(), tokens)
}

// ParseContext is like Parse, but stops early with an error if ctx is
// cancelled.
func (p *Parser) ParseContext(ctx context.Context, tokens []string) (*Result, error) {
	n := len(tokens)
	if n == 0 {
		return nil, errors.Wrap(ErrNoParse, "empty sentence")
	}
	chart := NewChart(tokens)
	for length := 1; length <= n; length++ {
		if err := p.fillLevel(ctx, chart, length); err != nil {
			return nil, err
		}
	}
	chart.Dump()
	return p.extract(chart)
}

// fillLevel computes all spans of a given length concurrently. It returns
// after every span of the level is done.
func (p *Parser) fillLevel(ctx context.Context, chart *Chart, length int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.workers, 1))
	for start := 0; start+length <= chart.Len(); start++ {
		start := start
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Errorf("filling span %v: %v", pcfg.Span{start, start + length}, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			p.fillSpan(chart, start, start+length)
			return nil
		})
	}
	return g.Wait()
}

func (p *Parser) fillSpan(chart *Chart, start, end int) {
	if end-start == 1 {
		p.resolveLeaf(chart, start)
		return
	}
	for _, rule := range p.rules {
		chart.populate(start, end, rule)
	}
	if p.unary && chart.IsPopulated(start, end) {
		p.closeUnary(chart, pcfg.Span{start, end}, false)
	}
}

func (p *Parser) extract(chart *Chart) (*Result, error) {
	n := chart.Len()
	best, ok := chart.Best(0, n)
	if !ok {
		tracer().Infof("cannot parse %q", strings.Join(chart.Tokens(), " "))
		return nil, errors.Wrapf(ErrNoParse, "no symbol spans all of %d tokens", n)
	}
	result := &Result{Root: p.start, StartReached: true, Chart: chart}
	if result.Prob = chart.Prob(0, n, p.start); result.Prob < 0 {
		tracer().Infof("cannot build tree with %s as root, using %s instead", p.start, best.Symbol)
		result.Root, result.Prob, result.StartReached = best.Symbol, best.Prob, false
	}
	t, err := chart.BuildTree(result.Root, pcfg.Span{0, n})
	if err != nil {
		return nil, corrupted(err)
	}
	result.Tree = t
	return result, nil
}

// --- Rule snapshots --------------------------------------------------------

type production struct {
	body    string
	symbols []string
	score   float64
}

type compiledRule struct {
	head   string
	bodies []production
}

func compile(rule *grammar.Rule) compiledRule {
	cr := compiledRule{head: rule.Head, bodies: make([]production, 0, rule.Len())}
	for _, e := range rule.Expansions() {
		cr.bodies = append(cr.bodies, production{
			body:    e.Body,
			symbols: e.Symbols(),
			score:   e.Score,
		})
	}
	return cr
}
