package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/go-g2p/tokenizer"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// An empty document yields the zero Config.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := tokenizer.ParseMode(cfg.Mode); err != nil {
		errs = append(errs, fmt.Errorf("mode: %w", err))
	}
	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if cfg.Variants.Mass < 0 {
		errs = append(errs, fmt.Errorf("variants.mass must be >= 0, got %g", cfg.Variants.Mass))
	}
	if cfg.Variants.Number < 0 {
		errs = append(errs, fmt.Errorf("variants.number must be >= 0, got %d", cfg.Variants.Number))
	}

	e := cfg.Engine
	if e.Fake != "" && e.Model != "" {
		errs = append(errs, errors.New("engine: fake and model are mutually exclusive"))
	}
	if e.Model != "" && e.Vocabulary == "" {
		errs = append(errs, errors.New("engine.vocabulary is required with engine.model"))
	}
	if e.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("engine.pool_size must be >= 0, got %d", e.PoolSize))
	}
	if e.Beam < 0 {
		errs = append(errs, fmt.Errorf("engine.beam must be >= 0, got %d", e.Beam))
	}
	if e.MaxHypotheses < 0 {
		errs = append(errs, fmt.Errorf("engine.max_hypotheses must be >= 0, got %d", e.MaxHypotheses))
	}

	return errors.Join(errs...)
}
