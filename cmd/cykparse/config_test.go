package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gonuts/flag"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
corpus: ./treebank
runs: 4
ratio: 0.8
unary: true
`

func TestLoadConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cli")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "cykparse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	conf, err := loadConfig(path)
	require.NoError(t, err)
	conf.InitDefaults()
	assert.Equal(t, "./treebank", conf.GetString("corpus"))
	assert.Equal(t, 4, conf.GetInt("runs"))
	assert.Equal(t, "4", conf.GetString("runs"))
	assert.Equal(t, "0.8", conf.GetString("ratio"))
	assert.True(t, conf.GetBool("unary"))
	assert.Equal(t, "S", conf.GetString("start"))
	assert.False(t, conf.IsSet("model"))
	assert.Equal(t, "", conf.GetString("model"))
}

func TestLoadConfigMissingFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cli")
	defer teardown()
	//
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcfg.cli")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "cykparse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	conf, err := loadConfig(path)
	require.NoError(t, err)
	var corpus string
	var runs int
	var ratio float64
	var unary bool
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.StringVar(&corpus, "corpus", "", "")
	flags.IntVar(&runs, "runs", 1, "")
	flags.Float64Var(&ratio, "ratio", 0.9, "")
	flags.BoolVar(&unary, "unary", false, "")
	require.NoError(t, flags.Parse([]string{"-runs", "2"}))
	require.NoError(t, applyConfig(flags, conf))
	assert.Equal(t, "./treebank", corpus)
	assert.Equal(t, 2, runs) // command line wins
	assert.InDelta(t, 0.8, ratio, 1e-9)
	assert.True(t, unary)
}
