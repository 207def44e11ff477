// Package config holds the settings of the command line tools, read from a
// YAML file. Command line flags override the values loaded here.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrBadMaxVisits = errors.New("config: max-visits must not be negative")
	ErrNoAnalyses   = errors.New("config: no analyses selected")
)

// Config selects what to analyse and how.
// Fields not in the file keep their Default value.
type Config struct {
	// Analyses are the names of the analyses to run (see impls.Names).
	Analyses []string `yaml:"analyses"`

	// Funcs are the functions to analyse, in ssa.FindFunc format.
	// Empty means every source function.
	Funcs []string `yaml:"funcs"`

	// UsedOnly skips functions unreachable in the call graph built with
	// CallGraph.
	UsedOnly  bool   `yaml:"used-only"`
	CallGraph string `yaml:"callgraph"`

	// MaxVisits bounds block visits per analysis, 0 for no bound.
	MaxVisits int `yaml:"max-visits"`

	Color bool      `yaml:"color"`
	Log   LogConfig `yaml:"log"`
}

// LogConfig sets up the analysis logger.
type LogConfig struct {
	Level string   `yaml:"level"`
	Files []string `yaml:"files"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Analyses:  []string{"liveness"},
		CallGraph: "rta",
		Log:       LogConfig{Level: "warn"},
	}
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	cfg, err := Parse(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrapf(err, "bad config %s", path)
	}
	return cfg, nil
}

// Parse reads a configuration from r. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "cannot decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values which cannot be checked by decoding.
func (c *Config) Validate() error {
	if c.MaxVisits < 0 {
		return errors.Wrapf(ErrBadMaxVisits, "got %d", c.MaxVisits)
	}
	if len(c.Analyses) == 0 {
		return ErrNoAnalyses
	}
	return nil
}
