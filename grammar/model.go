package grammar

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/npillmayer/pcfg"
)

// ErrInvalidBody is returned for productions which have neither one nor two
// body symbols.
var ErrInvalidBody = errors.New("invalid production body")

// Model is a PCFG grammar model: a collection of rules, plus prior
// probabilities of non-terminals for unknown words.
//
// A model is built once (by training or loading) and is read-only afterwards.
// Read-only models may be shared between parsers and goroutines.
type Model struct {
	rules    *linkedhashmap.Map // head → *Rule, in order of first appearance
	priors   []Prior
	priorIdx map[string]int
}

// Prior is the fallback probability of a non-terminal to produce an unknown word.
type Prior struct {
	Symbol string
	Prob   float64
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		rules:    linkedhashmap.New(),
		priorIdx: make(map[string]int),
	}
}

// --- Training --------------------------------------------------------------

// Train counts the productions of all examples of a corpus. The corpus is
// consumed; it cannot be restarted.
//
// Training does not normalize the model. Clients have to call Normalize before
// using the model for parsing or before saving it.
func (m *Model) Train(corpus pcfg.Corpus) error {
	sentences, productions := 0, 0
	for corpus.Next() {
		ex := corpus.Example()
		if ex.Tree == nil {
			tracer().Errorf("example %s#%d has no tree, skipping", ex.SourceID, ex.Index)
			continue
		}
		for _, p := range ex.Tree.Productions() {
			head, body, err := SplitProduction(p)
			if err != nil {
				return errors.Wrapf(err, "sentence %d of %s", ex.Index, ex.SourceID)
			}
			m.UpdateCounts(head, body)
			productions++
		}
		sentences++
		if sentences%1000 == 0 {
			tracer().Debugf("trained %d sentences", sentences)
		}
	}
	if err := corpus.Err(); err != nil {
		return errors.Wrap(err, "reading training corpus")
	}
	tracer().Infof("finished processing data: %d sentences, %d productions, %d heads",
		sentences, productions, m.rules.Size())
	return nil
}

// SplitProduction converts a production of a normalized tree into a
// (head, body) pair. Lexical bodies are lower-cased, numbers are
// replaced by pcfg.NumSymbol.
func SplitProduction(p pcfg.Production) (string, string, error) {
	switch {
	case p.Lexical && p.Arity() == 1:
		return p.Head, pcfg.LexicalForm(p.Body[0]), nil
	case !p.Lexical && (p.Arity() == 1 || p.Arity() == 2):
		return p.Head, JoinBody(p.Body...), nil
	}
	return "", "", errors.Wrapf(ErrInvalidBody, "%v", p)
}

// UpdateCounts counts a single occurence of head → body.
func (m *Model) UpdateCounts(head, body string) {
	m.ruleFor(head).AddExpansion(body)
}

func (m *Model) ruleFor(head string) *Rule {
	if r, found := m.rules.Get(head); found {
		return r.(*Rule)
	}
	r := NewRule(head)
	m.rules.Put(head, r)
	return r
}

// SetScore sets head → body to a fixed score, bypassing counting. Clients
// should call Normalize afterwards.
func (m *Model) SetScore(head, body string, score float64) {
	m.ruleFor(head).SetExpansion(body, score)
}

// Normalize turns the counts of every rule into probabilities.
func (m *Model) Normalize() {
	it := m.rules.Iterator()
	for it.Next() {
		it.Value().(*Rule).Normalize()
	}
}

// --- Priors ----------------------------------------------------------------

// InitializePriors computes the prior distribution of non-terminals for
// unknown words. Every body consisting of a single symbol which is not a
// head of the grammar counts as lexical; its probability adds to the
// weight of its head. Weights are normalized to sum up to 1.
func (m *Model) InitializePriors() {
	m.priors = m.priors[:0]
	m.priorIdx = make(map[string]int)
	var total float64
	it := m.rules.Iterator()
	for it.Next() {
		r := it.Value().(*Rule)
		for _, body := range r.Bodies() {
			if len(SplitBody(body)) != 1 || m.IsNonterminal(body) {
				continue
			}
			p, _ := r.Score(body)
			inx, ok := m.priorIdx[r.Head]
			if !ok {
				inx = len(m.priors)
				m.priorIdx[r.Head] = inx
				m.priors = append(m.priors, Prior{Symbol: r.Head})
			}
			m.priors[inx].Prob += p
			total += p
		}
	}
	if total > 0 {
		for i := range m.priors {
			m.priors[i].Prob /= total
		}
	}
	tracer().Debugf("initialized priors for %d non-terminals", len(m.priors))
}

// SetPrior overrides the prior probability of a non-terminal. Priors set this
// way are not re-normalized.
func (m *Model) SetPrior(sym string, p float64) {
	if inx, ok := m.priorIdx[sym]; ok {
		m.priors[inx].Prob = p
		return
	}
	m.priorIdx[sym] = len(m.priors)
	m.priors = append(m.priors, Prior{Symbol: sym, Prob: p})
}

// Priors returns the prior distribution over non-terminals, in rule order.
// Clients must not modify the returned slice.
func (m *Model) Priors() []Prior {
	return m.priors
}

// Prior returns the prior probability of a non-terminal, and a flag
// indicating whether sym has a prior.
func (m *Model) Prior(sym string) (float64, bool) {
	if inx, ok := m.priorIdx[sym]; ok {
		return m.priors[inx].Prob, true
	}
	return 0, false
}

// --- Queries ---------------------------------------------------------------

// Rule returns the rule for a head symbol, or nil.
func (m *Model) Rule(head string) *Rule {
	if r, found := m.rules.Get(head); found {
		return r.(*Rule)
	}
	return nil
}

// Rules returns all rules in order of first appearance of their heads.
func (m *Model) Rules() []*Rule {
	rules := make([]*Rule, 0, m.rules.Size())
	it := m.rules.Iterator()
	for it.Next() {
		rules = append(rules, it.Value().(*Rule))
	}
	return rules
}

// IsNonterminal is a predicate: is sym the head of a rule?
func (m *Model) IsNonterminal(sym string) bool {
	_, found := m.rules.Get(sym)
	return found
}

// Size returns the number of heads.
func (m *Model) Size() int {
	return m.rules.Size()
}

// Nonterminals returns all head symbols, sorted alphabetically.
func (m *Model) Nonterminals() []string {
	set := treeset.NewWithStringComparator()
	for _, h := range m.rules.Keys() {
		set.Add(h)
	}
	nts := make([]string, 0, set.Size())
	for _, h := range set.Values() {
		nts = append(nts, h.(string))
	}
	return nts
}

// Stats summarizes a model.
type Stats struct {
	Heads, Lexical, Unary, Binary int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d heads, %d lexical / %d unary / %d binary expansions",
		s.Heads, s.Lexical, s.Unary, s.Binary)
}

// Stats counts heads and kinds of expansions.
func (m *Model) Stats() Stats {
	st := Stats{Heads: m.rules.Size()}
	for _, r := range m.Rules() {
		for _, body := range r.Bodies() {
			switch syms := SplitBody(body); {
			case len(syms) == 2:
				st.Binary++
			case m.IsNonterminal(body):
				st.Unary++
			default:
				st.Lexical++
			}
		}
	}
	return st
}

// Triple is a single (head, body, score) entry of a model.
type Triple struct {
	Head  string
	Body  string
	Score float64
}

// Triples returns all entries of the model, sorted by head and body.
func (m *Model) Triples() []Triple {
	entries := make(map[string]Triple)
	for _, r := range m.Rules() {
		for _, e := range r.Expansions() {
			entries[r.Head+" -> "+e.Body] = Triple{Head: r.Head, Body: e.Body, Score: e.Score}
		}
	}
	keys := maps.Keys(entries)
	slices.Sort(keys)
	triples := make([]Triple, len(keys))
	for i, k := range keys {
		triples[i] = entries[k]
	}
	return triples
}

// Fingerprint returns a hash over the sorted entries of the model. Models
// with identical entries have identical fingerprints, independent of the
// order in which rules have been added.
func (m *Model) Fingerprint() string {
	h, err := structhash.Hash(struct {
		Triples []Triple
	}{m.Triples()}, 1)
	if err != nil {
		tracer().Errorf("cannot hash model: %v", err)
		return ""
	}
	return h
}
