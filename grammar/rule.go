package grammar

import (
	"strconv"
	"strings"

	"github.com/npillmayer/pcfg"
)

// Rule holds the expansions of a single head symbol. Bodies are kept in
// order of their first appearance, which determines tie-breaking during parsing.
//
// A rule is mutable during training only; it is not safe for concurrent
// modification.
type Rule struct {
	Head   string
	bodies []string
	scores map[string]float64
	count  float64 // running total of scores
}

// NewRule creates an empty rule for a head symbol.
func NewRule(head string) *Rule {
	return &Rule{
		Head:   head,
		bodies: make([]string, 0, 4),
		scores: make(map[string]float64),
	}
}

// AddExpansion counts one occurence of head → body.
func (r *Rule) AddExpansion(body string) {
	if _, ok := r.scores[body]; !ok {
		r.bodies = append(r.bodies, body)
	}
	r.scores[body]++
	r.count++
}

// SetExpansion sets the score of head → body directly, e.g. when loading
// a stored model. The running total is not touched.
func (r *Rule) SetExpansion(body string, score float64) {
	if _, ok := r.scores[body]; !ok {
		r.bodies = append(r.bodies, body)
	}
	r.scores[body] = score
}

// Normalize converts counts to probabilities. If the running total is zero
// (rule has been populated by SetExpansion), the total is re-derived from the
// current scores. Afterwards the total is reset to 1, which makes subsequent
// calls to Normalize no-ops.
func (r *Rule) Normalize() {
	if r.count == 0 {
		for _, body := range r.bodies {
			r.count += r.scores[body]
		}
	}
	if r.count == 0 {
		return // nothing to distribute
	}
	for _, body := range r.bodies {
		r.scores[body] /= r.count
	}
	r.count = 1
}

// Score returns the score of a body and a flag indicating whether the body
// is present.
func (r *Rule) Score(body string) (float64, bool) {
	s, ok := r.scores[body]
	return s, ok
}

// Bodies returns the bodies of this rule in insertion order.
// Clients must not modify the returned slice.
func (r *Rule) Bodies() []string {
	return r.bodies
}

// Len returns the number of distinct bodies.
func (r *Rule) Len() int {
	return len(r.bodies)
}

// Total returns the running total of this rule.
func (r *Rule) Total() float64 {
	return r.count
}

// Expansion is a body together with its score.
type Expansion struct {
	Body  string
	Score float64
}

// Symbols splits the body into its symbols.
func (e Expansion) Symbols() []string {
	return SplitBody(e.Body)
}

// Expansions returns the bodies of a rule with their scores, in insertion order.
func (r *Rule) Expansions() []Expansion {
	exps := make([]Expansion, len(r.bodies))
	for i, body := range r.bodies {
		exps[i] = Expansion{Body: body, Score: r.scores[body]}
	}
	return exps
}

// Lines renders every expansion as a line
//
//     HEAD -> BODY,SCORE
//
func (r *Rule) Lines() []string {
	lines := make([]string, len(r.bodies))
	for i, body := range r.bodies {
		lines[i] = r.Head + " -> " + body + "," + formatScore(r.scores[body])
	}
	return lines
}

func (r *Rule) String() string {
	return strings.Join(r.Lines(), "\n")
}

// --- Bodies ----------------------------------------------------------------

// JoinBody creates a body from one or two symbols.
func JoinBody(symbols ...string) string {
	return strings.Join(symbols, pcfg.BodySeparator)
}

// SplitBody splits a body into its symbols.
func SplitBody(body string) []string {
	return strings.Split(body, pcfg.BodySeparator)
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'g', -1, 64)
}
