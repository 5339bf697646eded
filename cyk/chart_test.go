package cyk

import (
	"testing"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/pcfg"
	"github.com/npillmayer/pcfg/grammar"
)

func TestChartUpdateStrictlyGreater(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	c := NewChart([]string{"a", "b"})
	assert.Equal(t, -1.0, c.Prob(0, 1, "X"))
	assert.True(t, c.Update(0, 1, "X", Leaf("a"), 0.3))
	assert.True(t, c.Update(0, 1, "Y", Leaf("a"), 0.1))
	assert.False(t, c.Update(0, 1, "X", Unary("Y", pcfg.Span{0, 1}), 0.3), "equal probability must not overwrite")
	assert.True(t, c.Update(0, 1, "X", Unary("Y", pcfg.Span{0, 1}), 0.4))
	assert.InDelta(t, 0.4, c.Prob(0, 1, "X"), epsilon)
	cell := c.Cell(0, 1)
	require.Len(t, cell, 2)
	assert.Equal(t, "X", cell[0].Symbol, "overwrite keeps position")
	assert.Equal(t, UnaryBP, cell[0].Back.Kind)
	assert.False(t, c.Update(1, 3, "X", Leaf("b"), 1), "span outside chart")
}

func TestChartEntry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	c := NewChart([]string{"a", "b"})
	_, _, err := c.Entry(pcfg.Span{0, 2}, "X")
	assert.True(t, errors.Is(err, ErrUnpopulatedSpan))
	c.open(0, 2)
	_, found, err := c.Entry(pcfg.Span{0, 2}, "X")
	assert.NoError(t, err)
	assert.False(t, found)
	c.Update(0, 2, "X", Binary("A", pcfg.Span{0, 1}, "B", pcfg.Span{1, 2}), 0.5)
	e, found, err := c.Entry(pcfg.Span{0, 2}, "X")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "A:0-1 B:1-2", e.Back.String())
}

func TestChartPopulate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	m := grammar.NewModel()
	m.SetScore("NP", "dog", 0.5)
	m.SetScore("NP", "DT NN", 0.5)
	m.SetScore("DT", "the", 1)
	m.SetScore("NN", "dog", 1)
	c := NewChart([]string{"the", "dog"})
	for _, r := range m.Rules() {
		c.Populate(0, 1, r)
		c.Populate(1, 2, r)
	}
	assert.Equal(t, -1.0, c.Prob(0, 1, "NP"))
	assert.InDelta(t, 0.5, c.Prob(1, 2, "NP"), epsilon)
	assert.InDelta(t, 1.0, c.Prob(0, 1, "DT"), epsilon)
	c.Populate(0, 2, m.Rule("NP"))
	assert.InDelta(t, 0.5, c.Prob(0, 2, "NP"), epsilon)
	best, ok := c.Best(0, 2)
	assert.True(t, ok)
	assert.Equal(t, "NP", best.Symbol)
	tree, err := c.BuildTree("NP", pcfg.Span{0, 2})
	require.NoError(t, err)
	assert.Equal(t, "(NP (DT the) (NN dog))", tree.String())
	c.Dump()
}

func TestBuildTreeErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	c := NewChart([]string{"a", "b", "c"})
	c.Update(0, 2, "X", Leaf("a"), 1)
	_, err := c.BuildTree("X", pcfg.Span{0, 2})
	assert.True(t, errors.Is(err, ErrInvalidBackpointer), "leaf on long span: %v", err)
	//
	c.Update(0, 3, "Y", Binary("X", pcfg.Span{0, 2}, "Z", pcfg.Span{1, 3}), 1)
	_, err = c.BuildTree("Y", pcfg.Span{0, 3})
	assert.True(t, errors.Is(err, ErrInvalidBackpointer), "overlapping sub-spans: %v", err)
	//
	c.Update(0, 1, "A", Leaf("a"), 1)
	c.Update(0, 3, "W", Binary("A", pcfg.Span{0, 1}, "B", pcfg.Span{1, 3}), 1)
	_, err = c.BuildTree("W", pcfg.Span{0, 3})
	assert.True(t, errors.Is(err, ErrUnpopulatedSpan), "dangling span: %v", err)
	//
	c.Update(2, 3, "P", Unary("Q", pcfg.Span{2, 3}), 1)
	c.Update(2, 3, "Q", Unary("P", pcfg.Span{2, 3}), 1)
	_, err = c.BuildTree("P", pcfg.Span{2, 3})
	assert.True(t, errors.Is(err, ErrInvalidBackpointer), "unary cycle: %v", err)
	//
	c.Update(1, 2, "R", Unary("S", pcfg.Span{0, 2}), 1)
	_, err = c.BuildTree("R", pcfg.Span{1, 2})
	assert.True(t, errors.Is(err, ErrInvalidBackpointer), "unary off span: %v", err)
}

func TestCorruptionPanicsOnFlag(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cyk")
	defer teardown()
	//
	err := errors.Wrap(ErrInvalidBackpointer, "test")
	assert.Equal(t, err, corrupted(err))
	gconf.Initialize(testconfig.Conf{"panic-on-chart-corruption": true})
	defer gconf.Initialize(testconfig.Conf{})
	assert.Panics(t, func() { _ = corrupted(err) })
}
