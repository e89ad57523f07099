// Package config provides the YAML run configuration of the g2p command
// line tools.
package config

import "log/slog"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level; the empty level is info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root run configuration. Command line flags override the
// values it holds.
type Config struct {
	// Mode is the input layout: sentence, word, phoneme-to-phoneme or
	// transpose. Empty means sentence.
	Mode string `yaml:"mode"`

	// Separator joins word transcriptions in sentence mode.
	Separator *string `yaml:"separator"`

	// Encoding names the character encoding of input and output.
	Encoding string `yaml:"encoding"`

	LogLevel LogLevel `yaml:"log_level"`

	Variants VariantsConfig `yaml:"variants"`
	Engine   EngineConfig   `yaml:"engine"`
}

// VariantsConfig enables ranked output. Zero values leave it off.
type VariantsConfig struct {
	// Mass stops enumeration once the collected posterior mass reaches it.
	Mass float64 `yaml:"mass"`

	// Number caps the hypotheses per word.
	Number int `yaml:"number"`
}

// EngineConfig selects the translation engine: a lookup table built from a
// pronunciation sample, or an ONNX model with its vocabulary.
type EngineConfig struct {
	// Fake is a plain pronunciation sample, or "left:right" sample files in
	// phoneme-to-phoneme mode.
	Fake string `yaml:"fake"`

	Model      string `yaml:"model"`
	Vocabulary string `yaml:"vocabulary"`

	PoolSize      int `yaml:"pool_size"`
	Beam          int `yaml:"beam"`
	MaxHypotheses int `yaml:"max_hypotheses"`
}
