package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// yamlConfig is a flat key/value configuration read from a YAML file.
// It implements schuko.Configuration.
type yamlConfig struct {
	values map[string]interface{}
}

var _ schuko.Configuration = &yamlConfig{}

// loadConfig reads a configuration file. If path is empty, the user's
// configuration folders are searched. No file at all is fine, resulting
// in default values.
func loadConfig(path string) (*yamlConfig, error) {
	conf := &yamlConfig{values: make(map[string]interface{})}
	if path == "" {
		found := schuko.LocateConfig("cykparse", "", []string{"yaml", "yml"})
		if len(found) == 0 {
			return conf, nil
		}
		path = found[0]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read configuration")
	}
	if err := yaml.Unmarshal(data, &conf.values); err != nil {
		return nil, errors.Wrapf(err, "malformed configuration %s", path)
	}
	if conf.values == nil { // empty document
		conf.values = make(map[string]interface{})
	}
	return conf, nil
}

func (c *yamlConfig) InitDefaults() {
	defaults := map[string]interface{}{
		"tracing": "go",
		"trace":   "Info",
		"start":   "S",
	}
	for k, v := range defaults {
		if _, ok := c.values[k]; !ok {
			c.values[k] = v
		}
	}
}

func (c *yamlConfig) IsSet(key string) bool {
	_, ok := c.values[key]
	return ok
}

func (c *yamlConfig) GetString(key string) string {
	switch v := c.values[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (c *yamlConfig) GetInt(key string) int {
	switch v := c.values[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func (c *yamlConfig) GetBool(key string) bool {
	switch v := c.values[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func (c *yamlConfig) IsInteractive() bool {
	return false
}

// --- Setup -----------------------------------------------------------------

// setup loads the configuration and applies it to every flag of cmd which
// has not been set on the command line. It then initializes tracing.
func setup(cmd *commander.Command) error {
	conf, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	gconf.Initialize(conf)
	if err := applyConfig(&cmd.Flag, conf); err != nil {
		return err
	}
	initTracing(traceLevel)
	return nil
}

func applyConfig(flags *flag.FlagSet, conf schuko.Configuration) error {
	explicit := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	var err error
	flags.VisitAll(func(f *flag.Flag) {
		if err != nil || explicit[f.Name] || !conf.IsSet(f.Name) {
			return
		}
		if e := flags.Set(f.Name, conf.GetString(f.Name)); e != nil {
			err = errors.Wrapf(e, "configuration value for %q", f.Name)
		}
	})
	return err
}

// initTracing lets all packages trace to a single Go logger.
func initTracing(level string) {
	t := gologadapter.New()
	t.SetTraceLevel(tracing.TraceLevelFromString(level))
	gtrace.SyntaxTracer = t
	gtrace.CommandTracer = t
	tracing.SetTraceSelector(tracing.SelectorForAdapter(func() tracing.Trace {
		return t
	}))
	tracer().Debugf("trace level is %s", t.GetTraceLevel())
}
