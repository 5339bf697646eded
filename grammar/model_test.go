package grammar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/pcfg"
)

// derivation is a ready-made list of productions, standing in for a
// normalized tree.
type derivation []pcfg.Production

func (d derivation) Productions() []pcfg.Production {
	return d
}

func bin(head, l, r string) pcfg.Production {
	return pcfg.Production{Head: head, Body: []string{l, r}}
}

func unary(head, child string) pcfg.Production {
	return pcfg.Production{Head: head, Body: []string{child}}
}

func lex(head, word string) pcfg.Production {
	return pcfg.Production{Head: head, Body: []string{word}, Lexical: true}
}

// (S (NP (DT The) (NN dog)) (VP (VBZ barks)))
// (S (NP (CD 42)) (VP (VBZ barks)))
func toyCorpus() pcfg.Corpus {
	return pcfg.NewSliceCorpus(
		pcfg.Example{SourceID: "toy", Index: 0, Tokens: []string{"The", "dog", "barks"},
			Tree: derivation{
				bin("S", "NP", "VP"), bin("NP", "DT", "NN"), lex("DT", "The"), lex("NN", "dog"),
				unary("VP", "VBZ"), lex("VBZ", "barks"),
			}},
		pcfg.Example{SourceID: "toy", Index: 1, Tokens: []string{"42", "barks"},
			Tree: derivation{
				bin("S", "NP", "VP"), unary("NP", "CD"), lex("CD", "42"),
				unary("VP", "VBZ"), lex("VBZ", "barks"),
			}},
	)
}

func trainedModel(t *testing.T) *Model {
	m := NewModel()
	require.NoError(t, m.Train(toyCorpus()))
	m.Normalize()
	m.InitializePriors()
	return m
}

func TestTrain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.grammar")
	defer teardown()
	//
	m := NewModel()
	require.NoError(t, m.Train(toyCorpus()))
	assert.Equal(t, []string{"S", "NP", "DT", "NN", "VP", "VBZ", "CD"}, headsOf(m))
	s, ok := m.Rule("DT").Score("the")
	assert.True(t, ok, "lexical bodies should be lower-cased")
	assert.Equal(t, 1.0, s)
	_, ok = m.Rule("CD").Score(pcfg.NumSymbol)
	assert.True(t, ok, "numbers should be replaced by <NUM>")
	s, _ = m.Rule("VBZ").Score("barks")
	assert.Equal(t, 2.0, s, "training must not normalize")
}

func headsOf(m *Model) []string {
	var heads []string
	for _, r := range m.Rules() {
		heads = append(heads, r.Head)
	}
	return heads
}

func TestTrainInvalidBody(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.grammar")
	defer teardown()
	//
	corpus := pcfg.NewSliceCorpus(pcfg.Example{SourceID: "bad", Tree: derivation{
		{Head: "S", Body: []string{"NP", "VP", "."}},
	}})
	err := NewModel().Train(corpus)
	if !errors.Is(err, ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody for ternary production, got %v", err)
	}
}

func TestNormalizeSumsToOne(t *testing.T) {
	m := trainedModel(t)
	for _, r := range m.Rules() {
		assert.InDelta(t, 1.0, sum(r), epsilon, "rule %s", r.Head)
	}
	p, _ := m.Rule("NP").Score("DT NN")
	assert.InDelta(t, 0.5, p, epsilon)
}

func TestPriors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.grammar")
	defer teardown()
	//
	m := trainedModel(t)
	// lexical heads DT, NN, VBZ, CD each spend all of their mass on words;
	// NP -> CD and VP -> VBZ are unary chains, not lexical
	priors := m.Priors()
	require.Len(t, priors, 4)
	var total float64
	for _, p := range priors {
		total += p.Prob
		assert.InDelta(t, 0.25, p.Prob, epsilon, "prior of %s", p.Symbol)
	}
	assert.InDelta(t, 1.0, total, epsilon)
	_, ok := m.Prior("NP")
	assert.False(t, ok, "NP has no lexical expansions")
	assert.Equal(t, "DT", priors[0].Symbol)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.grammar")
	defer teardown()
	//
	m := trainedModel(t)
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	t.Logf("model:\n%s", buf.String())
	loaded, err := ReadModel(&buf)
	require.NoError(t, err)
	orig, back := m.Triples(), loaded.Triples()
	require.Equal(t, len(orig), len(back))
	for i := range orig {
		assert.Equal(t, orig[i].Head, back[i].Head)
		assert.Equal(t, orig[i].Body, back[i].Body)
		assert.InDelta(t, orig[i].Score, back[i].Score, epsilon)
	}
	require.Equal(t, len(m.Priors()), len(loaded.Priors()))
	for i, p := range m.Priors() {
		assert.Equal(t, p.Symbol, loaded.Priors()[i].Symbol)
		assert.InDelta(t, p.Prob, loaded.Priors()[i].Prob, epsilon)
	}
	assert.Equal(t, m.Fingerprint(), loaded.Fingerprint())
}

func TestLoadCountsNormalizes(t *testing.T) {
	input := "S -> NP VP,3\nS -> VP,1\n\nNP -> dog,2\nVP -> barks,5\n"
	m, err := ReadModel(strings.NewReader(input))
	require.NoError(t, err)
	p, _ := m.Rule("S").Score("NP VP")
	assert.InDelta(t, 0.75, p, epsilon)
	p, _ = m.Rule("VP").Score("barks")
	assert.InDelta(t, 1.0, p, epsilon)
}

func TestParseLine(t *testing.T) {
	head, body, score, err := parseLine(", -> ,,0.25")
	require.NoError(t, err)
	assert.Equal(t, ",", head)
	assert.Equal(t, ",", body)
	assert.Equal(t, 0.25, score)
	_, body, _, err = parseLine("NP -> NP ,,1e-05")
	require.NoError(t, err)
	assert.Equal(t, "NP ,", body)
	for _, bad := range []string{"S NP VP,1", "S -> NP VP", "S -> NP VP,x", "S -> ,1"} {
		_, _, _, err = parseLine(bad)
		assert.True(t, errors.Is(err, ErrMalformedLine), "expected %q to be malformed", bad)
	}
	for _, bad := range []string{"S -> A B C,1", "S -> NP  VP,1", "S -> NP ,1", "S ->  NP,1"} {
		_, _, _, err = parseLine(bad)
		assert.True(t, errors.Is(err, ErrInvalidBody), "expected body of %q to be invalid", bad)
	}
}

func TestReadModelRejectsInvalidBody(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.grammar")
	defer teardown()
	//
	_, err := ReadModel(strings.NewReader("A -> a,1\nS -> A B C,1\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBody))
	assert.Contains(t, err.Error(), "line 2")
}

func TestFingerprintIndependentOfOrder(t *testing.T) {
	m1, err := ReadModel(strings.NewReader("S -> NP VP,1\nNP -> dog,1\n"))
	require.NoError(t, err)
	m2, err := ReadModel(strings.NewReader("NP -> dog,1\nS -> NP VP,1\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, m1.Fingerprint())
	assert.Equal(t, m1.Fingerprint(), m2.Fingerprint())
}

func TestStatsAndNonterminals(t *testing.T) {
	m := trainedModel(t)
	st := m.Stats()
	assert.Equal(t, 7, st.Heads)
	assert.Equal(t, 2, st.Unary)  // NP -> CD, VP -> VBZ
	assert.Equal(t, 2, st.Binary) // S -> NP VP, NP -> DT NN
	assert.Equal(t, 4, st.Lexical)
	assert.Equal(t, []string{"CD", "DT", "NN", "NP", "S", "VBZ", "VP"}, m.Nonterminals())
}

func TestSetScoreAndPrior(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.grammar")
	defer teardown()
	//
	m := NewModel()
	m.SetScore("X", "dog", 0.5)
	m.SetScore("X", "cat", 1.5)
	m.Normalize()
	m.InitializePriors()
	p, ok := m.Prior("X")
	assert.True(t, ok)
	assert.InDelta(t, 1.0, p, epsilon)
	m.SetPrior("X", 0.2)
	m.SetPrior("Y", 0.1)
	p, _ = m.Prior("X")
	assert.InDelta(t, 0.2, p, epsilon)
	assert.Len(t, m.Priors(), 2)
	s, _ := m.Rule("X").Score("dog")
	assert.InDelta(t, 0.25, s, epsilon)
}
