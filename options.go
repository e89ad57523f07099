package g2p

import (
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel/metric"

	"github.com/jamesainslie/go-g2p/tokenizer"
)

// DefaultSeparator joins word transcriptions within a sentence.
const DefaultSeparator = " # "

// DefaultEncoding is the character encoding of input and output streams.
const DefaultEncoding = "ISO-8859-15"

// Option configures a Converter.
type Option func(*config)

type config struct {
	mode           tokenizer.Mode
	separator      string
	encoding       string
	variantsMass   float64
	variantsNumber int
	poolSize       int
	beam           int
	maxHypotheses  int
	logger         *slog.Logger
	meterProvider  metric.MeterProvider
}

func defaultConfig() config {
	return config{
		mode:      tokenizer.ModeSentence,
		separator: DefaultSeparator,
		encoding:  DefaultEncoding,
		poolSize:  runtime.NumCPU(),
		logger:    slog.Default(),
	}
}

// variants reports whether ranked enumeration is requested.
func (c config) variants() bool {
	return c.variantsMass > 0 || c.variantsNumber > 0
}

// limits resolves the variant stopping conditions; an unset mass means 1.0
// and an unset count means no cap.
func (c config) limits() Limits {
	lim := Limits{Mass: c.variantsMass, Number: c.variantsNumber}
	if lim.Mass <= 0 {
		lim.Mass = 1.0
	}
	return lim
}

// WithMode selects how input lines are split into words (default:
// tokenizer.ModeSentence).
func WithMode(m tokenizer.Mode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// WithSeparator sets the string joining word transcriptions in sentence
// mode (default: " # ").
func WithSeparator(sep string) Option {
	return func(c *config) {
		c.separator = sep
	}
}

// WithEncoding sets the character encoding of input and output, by IANA or
// WHATWG name (default: ISO-8859-15).
func WithEncoding(name string) Option {
	return func(c *config) {
		if name != "" {
			c.encoding = name
		}
	}
}

// WithVariantsMass enables variant output and stops enumeration once the
// posterior mass collected reaches q.
func WithVariantsMass(q float64) Option {
	return func(c *config) {
		if q > 0 {
			c.variantsMass = q
		}
	}
}

// WithVariantsNumber enables variant output and caps it at n hypotheses per
// word.
func WithVariantsNumber(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.variantsNumber = n
		}
	}
}

// WithPoolSize sets the ONNX session pool size used by Open (default:
// runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithBeam sets the per-step candidate count of the neural engine's ranked
// enumeration, used by Open.
func WithBeam(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.beam = n
		}
	}
}

// WithMaxHypotheses caps the hypotheses the neural engine yields per word,
// used by Open.
func WithMaxHypotheses(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxHypotheses = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for pipeline
// metrics (default: the global provider).
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}
