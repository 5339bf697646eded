package cyk

import (
	"fmt"
	"strings"
	"sync"

	"github.com/npillmayer/pcfg"
	"github.com/npillmayer/pcfg/grammar"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pkg/errors"
)

// Errors of the parser and of tree extraction.
var (
	// ErrNoParse is returned if the top cell of the chart holds no entry.
	// This is a regular outcome for sentences outside the grammar.
	ErrNoParse = errors.New("cannot parse sentence")

	// ErrInvalidBackpointer flags a backpointer which does not fit its span.
	ErrInvalidBackpointer = errors.New("invalid backpointer")

	// ErrUnpopulatedSpan flags a reference to a span without a cell.
	ErrUnpopulatedSpan = errors.New("unpopulated span")
)

// Entry is the best derivation of a symbol for a span.
type Entry struct {
	Symbol string
	Prob   float64
	Back   Backpointer
}

func (e Entry) String() string {
	return fmt.Sprintf("%s[%s]=%g", e.Symbol, e.Back, e.Prob)
}

type cell struct {
	sync.RWMutex
	populated bool
	index     map[string]int // symbol → position in entries
	entries   []Entry        // in order of insertion
}

// Chart is a CYK parse table. It holds a cell for every span (start…end) of
// the input, with 0 ≤ start < end ≤ n.
//
// Cells are guarded individually, so concurrent writers to different spans
// never contend.
type Chart struct {
	tokens []string
	cells  []cell
}

// NewChart creates an empty chart for a sentence.
func NewChart(tokens []string) *Chart {
	n := len(tokens)
	return &Chart{
		tokens: tokens,
		cells:  make([]cell, n*(n+1)/2),
	}
}

// Len returns the number of tokens of the sentence.
func (c *Chart) Len() int {
	return len(c.tokens)
}

// Tokens returns the sentence the chart has been created for.
func (c *Chart) Tokens() []string {
	return c.tokens
}

// cell returns the cell for (start…end), or nil if the span is outside
// the chart. Cells are stored row-wise by end position.
func (c *Chart) cell(start, end int) *cell {
	if start < 0 || start >= end || end > len(c.tokens) {
		return nil
	}
	return &c.cells[end*(end-1)/2+start]
}

// open marks a span as populated, even if no entry gets written to it.
func (c *Chart) open(start, end int) {
	if cl := c.cell(start, end); cl != nil {
		cl.Lock()
		cl.populated = true
		cl.Unlock()
	}
}

// Update stores an entry for sym on (start…end), if p is strictly greater
// than the probability currently stored for sym. It returns true if the entry
// has been written.
//
// Overwriting an entry keeps its position within the cell.
func (c *Chart) Update(start, end int, sym string, bp Backpointer, p float64) bool {
	cl := c.cell(start, end)
	if cl == nil {
		tracer().Errorf("update of %s outside of chart: %v", sym, pcfg.Span{start, end})
		return false
	}
	cl.Lock()
	defer cl.Unlock()
	cl.populated = true
	if inx, ok := cl.index[sym]; ok {
		if p <= cl.entries[inx].Prob {
			return false
		}
		cl.entries[inx].Prob = p
		cl.entries[inx].Back = bp
		return true
	}
	if cl.index == nil {
		cl.index = make(map[string]int)
	}
	cl.index[sym] = len(cl.entries)
	cl.entries = append(cl.entries, Entry{Symbol: sym, Prob: p, Back: bp})
	return true
}

// Prob returns the probability stored for sym on (start…end), or -1 if there
// is none.
func (c *Chart) Prob(start, end int, sym string) float64 {
	cl := c.cell(start, end)
	if cl == nil {
		return -1
	}
	cl.RLock()
	defer cl.RUnlock()
	if inx, ok := cl.index[sym]; ok {
		return cl.entries[inx].Prob
	}
	return -1
}

// Entry returns the entry for sym on span. found is false if the span has
// been populated but holds no entry for sym. If the span has never been
// populated, ErrUnpopulatedSpan is returned.
func (c *Chart) Entry(span pcfg.Span, sym string) (e Entry, found bool, err error) {
	cl := c.cell(span.From(), span.To())
	if cl == nil {
		return e, false, errors.Wrapf(ErrUnpopulatedSpan, "span %v outside of chart", span)
	}
	cl.RLock()
	defer cl.RUnlock()
	if !cl.populated {
		return e, false, errors.Wrapf(ErrUnpopulatedSpan, "span %v", span)
	}
	if inx, ok := cl.index[sym]; ok {
		return cl.entries[inx], true, nil
	}
	return e, false, nil
}

// IsPopulated is a predicate: has (start…end) been populated?
func (c *Chart) IsPopulated(start, end int) bool {
	cl := c.cell(start, end)
	if cl == nil {
		return false
	}
	cl.RLock()
	defer cl.RUnlock()
	return cl.populated
}

// Cell returns a snapshot of the entries of (start…end), in order of
// insertion.
func (c *Chart) Cell(start, end int) []Entry {
	cl := c.cell(start, end)
	if cl == nil {
		return nil
	}
	cl.RLock()
	defer cl.RUnlock()
	entries := make([]Entry, len(cl.entries))
	copy(entries, cl.entries)
	return entries
}

// Best returns the entry with the highest probability on (start…end).
// Among equal maxima, the first one inserted wins.
func (c *Chart) Best(start, end int) (Entry, bool) {
	var best Entry
	found := false
	for _, e := range c.Cell(start, end) {
		if !found || e.Prob > best.Prob {
			best, found = e, true
		}
	}
	return best, found
}

// Populate proposes the expansions of rule for (start…end).
//
// For a span of length 1, every body equal to the token at start proposes
// a leaf entry. For longer spans, every binary body is tried on every split
// point, from left to right, and proposes the product of the probabilities
// of both children and of the expansion itself.
func (c *Chart) Populate(start, end int, rule *grammar.Rule) {
	c.populate(start, end, compile(rule))
}

func (c *Chart) populate(start, end int, rule compiledRule) {
	if end-start == 1 {
		token := c.tokens[start]
		for _, b := range rule.bodies {
			if b.body == token {
				c.Update(start, end, rule.head, Leaf(token), b.score)
			}
		}
		return
	}
	for _, b := range rule.bodies {
		if len(b.symbols) != 2 {
			continue
		}
		for mid := start + 1; mid < end; mid++ {
			pl := c.Prob(start, mid, b.symbols[0])
			if pl < 0 {
				continue
			}
			pr := c.Prob(mid, end, b.symbols[1])
			if pr < 0 {
				continue
			}
			l, r := pcfg.Span{start, end}.Split(mid)
			c.Update(start, end, rule.head, Binary(b.symbols[0], l, b.symbols[1], r), pl*pr*b.score)
		}
	}
}

// Dump traces the populated cells of the chart, if tracing is on level debug.
func (c *Chart) Dump() {
	if tracer().GetTraceLevel() < tracing.LevelDebug {
		return
	}
	n := len(c.tokens)
	tracer().Debugf("--- Chart for %q ---", strings.Join(c.tokens, " "))
	for length := 1; length <= n; length++ {
		for start := 0; start+length <= n; start++ {
			end := start + length
			if !c.IsPopulated(start, end) {
				continue
			}
			entries := c.Cell(start, end)
			parts := make([]string, len(entries))
			for i, e := range entries {
				parts[i] = e.String()
			}
			tracer().Debugf("%v: %s", pcfg.Span{start, end}, strings.Join(parts, " "))
		}
	}
}
