package cyk

import (
	"context"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/pcfg"
	"github.com/npillmayer/pcfg/grammar"
)

const epsilon = 1e-9

func model(t *testing.T, lines ...string) *grammar.Model {
	m, err := grammar.ReadModel(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	return m
}

func dogBarksModel(t *testing.T) *grammar.Model {
	return model(t,
		"S -> NP VP,1.0",
		"NP -> dog,1.0",
		"VP -> barks,1.0",
	)
}

func TestParseDogBarks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	p := NewParser(dogBarksModel(t))
	result, err := p.Parse([]string{"dog", "barks"})
	require.NoError(t, err)
	assert.Equal(t, "(S (NP dog) (VP barks))", result.Tree.String())
	assert.InDelta(t, 1.0, result.Prob, epsilon)
	assert.True(t, result.StartReached)
	assert.Equal(t, "S", result.Root)
}

func TestParseSingleWord(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := grammar.NewModel()
	m.SetScore("X", "dog", 0.5)
	m.SetPrior("X", 0.2)
	result, err := NewParser(m).Parse([]string{"dog"})
	require.NoError(t, err)
	assert.Equal(t, "X", result.Root)
	assert.False(t, result.StartReached)
	assert.InDelta(t, 0.5, result.Prob, epsilon)
	assert.Equal(t, "(X dog)", result.Tree.String())
}

func TestParseUnknownWord(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := model(t,
		"S -> NP VP,1",
		"NP -> dog,1",
		"NP -> cat,1",
		"VP -> barks,1",
	)
	result, err := NewParser(m).Parse([]string{"fox", "barks"})
	require.NoError(t, err)
	leaf := result.Chart.Cell(0, 1)
	require.Len(t, leaf, 2)
	assert.Equal(t, "NP", leaf[0].Symbol)
	assert.InDelta(t, 0.5, leaf[0].Prob, epsilon)
	assert.Equal(t, LeafBP, leaf[0].Back.Kind)
	assert.Equal(t, "(S (NP fox) (VP barks))", result.Tree.String())
	assert.InDelta(t, 0.5, result.Prob, epsilon)
}

func TestParseStartSymbolFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := model(t,
		"NP -> DT NN,1",
		"DT -> the,1",
		"NN -> dog,1",
	)
	result, err := NewParser(m).Parse([]string{"the", "dog"})
	require.NoError(t, err)
	assert.False(t, result.StartReached)
	assert.Equal(t, "NP", result.Root)
	assert.Equal(t, "(NP (DT the) (NN dog))", result.Tree.String())
	//
	result, err = NewParser(m, StartSymbol("NP")).Parse([]string{"the", "dog"})
	require.NoError(t, err)
	assert.True(t, result.StartReached)
}

func TestParseNoParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	p := NewParser(dogBarksModel(t))
	_, err := p.Parse([]string{"barks", "dog"})
	assert.True(t, errors.Is(err, ErrNoParse), "expected ErrNoParse, got %v", err)
	_, err = p.Parse(nil)
	assert.True(t, errors.Is(err, ErrNoParse), "expected ErrNoParse for empty input, got %v", err)
}

func TestParseUnaryChainAtLeaves(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := model(t,
		"S -> NP VP,1",
		"NP -> NN,1",
		"NN -> dog,1",
		"VP -> VBZ,1",
		"VBZ -> barks,1",
	)
	result, err := NewParser(m).Parse([]string{"Dog", "barks"})
	require.NoError(t, err)
	assert.Equal(t, "(S (NP (NN Dog)) (VP (VBZ barks)))", result.Tree.String())
}

func TestParseNumbers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := model(t,
		"S -> NP VP,1",
		"NP -> CD,1",
		"CD -> "+pcfg.NumSymbol+",1",
		"VP -> barks,1",
	)
	result, err := NewParser(m).Parse([]string{"42", "barks"})
	require.NoError(t, err)
	assert.Equal(t, "(S (NP (CD 42)) (VP barks))", result.Tree.String())
}

func TestParseUnaryClosureOption(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := model(t,
		"S -> VP,1",
		"VP -> VBZ NN,1",
		"VBZ -> likes,1",
		"NN -> fish,1",
	)
	tokens := []string{"likes", "fish"}
	result, err := NewParser(m).Parse(tokens)
	require.NoError(t, err)
	assert.False(t, result.StartReached)
	assert.Equal(t, "VP", result.Root)
	//
	result, err = NewParser(m, UnaryClosure(true)).Parse(tokens)
	require.NoError(t, err)
	assert.True(t, result.StartReached)
	assert.Equal(t, "(S (VP (VBZ likes) (NN fish)))", result.Tree.String())
}

func TestTieBreakByBodyOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := model(t,
		"S -> A B,0.5",
		"S -> C D,0.5",
		"A -> x,1",
		"B -> y,1",
		"C -> x,1",
		"D -> y,1",
	)
	result, err := NewParser(m).Parse([]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, "(S (A x) (B y))", result.Tree.String())
}

func TestTieBreakBySplitPoint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := model(t,
		"X -> X X,1",
		"X -> a,1",
	)
	result, err := NewParser(m, StartSymbol("X")).Parse([]string{"a", "a", "a"})
	require.NoError(t, err)
	e, found, err := result.Chart.Entry(pcfg.Span{0, 3}, "X")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, pcfg.Span{0, 1}, e.Back.Left.Span)
	assert.InDelta(t, 0.03125, e.Prob, epsilon)
	assert.Equal(t, "(X (X a) (X (X a) (X a)))", result.Tree.String())
}

// Every entry of a span of length ≥ 2 must carry the maximum over all binary
// rules and split points.
func TestBinaryCellsHoldMaximum(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := model(t,
		"S -> S S,0.3",
		"S -> X Y,0.5",
		"S -> a,0.2",
		"X -> X X,0.4",
		"X -> a,0.4",
		"X -> b,0.2",
		"Y -> b,0.7",
		"Y -> Y X,0.3",
	)
	tokens := []string{"a", "b", "a", "b", "b", "a"}
	result, err := NewParser(m).Parse(tokens)
	require.NoError(t, err)
	chart := result.Chart
	n := len(tokens)
	for length := 2; length <= n; length++ {
		for start := 0; start+length <= n; start++ {
			end := start + length
			best := map[string]float64{}
			for _, rule := range m.Rules() {
				for _, e := range rule.Expansions() {
					syms := e.Symbols()
					if len(syms) != 2 {
						continue
					}
					for mid := start + 1; mid < end; mid++ {
						pl, pr := chart.Prob(start, mid, syms[0]), chart.Prob(mid, end, syms[1])
						if pl < 0 || pr < 0 {
							continue
						}
						if p := pl * pr * e.Score; p > best[rule.Head] {
							best[rule.Head] = p
						}
					}
				}
			}
			for sym, p := range best {
				assert.InDelta(t, p, chart.Prob(start, end, sym), epsilon, "%s on (%d…%d)", sym, start, end)
			}
			assert.Len(t, chart.Cell(start, end), len(best), "cell (%d…%d)", start, end)
		}
	}
}

func TestParseIndependentOfWorkers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := model(t,
		"S -> S S,0.5",
		"S -> a,0.25",
		"S -> b,0.25",
	)
	tokens := strings.Fields("a b a a b b a b")
	r1, err := NewParser(m, Workers(1)).Parse(tokens)
	require.NoError(t, err)
	r8, err := NewParser(m, Workers(8)).Parse(tokens)
	require.NoError(t, err)
	assert.True(t, r1.Tree.Equal(r8.Tree), "%s != %s", r1.Tree, r8.Tree)
	assert.Equal(t, r1.Prob, r8.Prob)
	for start := 0; start < len(tokens); start++ {
		for end := start + 1; end <= len(tokens); end++ {
			assert.Equal(t, r1.Chart.Cell(start, end), r8.Chart.Cell(start, end))
		}
	}
}

func TestParseCancelled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewParser(dogBarksModel(t)).ParseContext(ctx, []string{"dog", "barks"})
	assert.True(t, errors.Is(err, context.Canceled), "expected cancellation, got %v", err)
}

func TestTaskPanicBecomesError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	p := NewParser(dogBarksModel(t), Workers(2))
	chart := &Chart{tokens: []string{"dog", "barks"}} // no cells
	var err error
	assert.NotPanics(t, func() {
		err = p.fillLevel(context.Background(), chart, 1)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filling span")
}

func TestZeroParserDoesNotBlock(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	var p Parser
	_, err := p.Parse([]string{"dog"})
	assert.True(t, errors.Is(err, ErrNoParse), "expected ErrNoParse, got %v", err)
}
