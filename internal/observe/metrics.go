// Package observe holds the OpenTelemetry instruments of the apply pipeline.
//
// Instruments are created from a [metric.MeterProvider]; the default is the
// global provider, which records nothing until an SDK is installed. Tests
// should use [NewMetrics] with an sdk/metric provider and a ManualReader.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope of all pipeline metrics.
const meterName = "github.com/jamesainslie/go-g2p"

// Word outcomes recorded on the words counter.
const (
	StatusTranslated = "translated"
	StatusFailed     = "failed"
)

// Line kinds recorded on the lines counter.
const (
	LineInput  = "input"
	LineOutput = "output"
	LineEmpty  = "empty"
)

// Metrics holds the pipeline instruments. All fields are safe for
// concurrent use.
type Metrics struct {
	// Lines counts lines by attribute.String("kind", input|output|empty).
	Lines metric.Int64Counter

	// Words counts words by attribute.String("status", translated|failed).
	Words metric.Int64Counter

	// FormatErrors counts input lines skipped for an unrecognized layout.
	FormatErrors metric.Int64Counter

	// Variants counts hypotheses pulled by the variant selector.
	Variants metric.Int64Counter

	// TranslateDuration tracks per-word engine latency.
	TranslateDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries in seconds; a lookup translator
// answers in microseconds, a neural one in milliseconds.
var latencyBuckets = []float64{
	0.00001, 0.0001, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

// NewMetrics creates the instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Lines, err = m.Int64Counter("g2p.lines",
		metric.WithDescription("Lines read and written by kind."),
	); err != nil {
		return nil, err
	}
	if met.Words, err = m.Int64Counter("g2p.words",
		metric.WithDescription("Words handed to the translation engine by outcome."),
	); err != nil {
		return nil, err
	}
	if met.FormatErrors, err = m.Int64Counter("g2p.format_errors",
		metric.WithDescription("Input lines skipped for an unrecognized format."),
	); err != nil {
		return nil, err
	}
	if met.Variants, err = m.Int64Counter("g2p.variants",
		metric.WithDescription("Hypotheses pulled from ranked enumeration."),
	); err != nil {
		return nil, err
	}
	if met.TranslateDuration, err = m.Float64Histogram("g2p.translate.duration",
		metric.WithDescription("Latency of one word translation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level Metrics built on
// [otel.GetMeterProvider]. It panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordLines adds n lines of the given kind.
func (m *Metrics) RecordLines(ctx context.Context, kind string, n int) {
	if n <= 0 {
		return
	}
	m.Lines.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordWord records one word outcome and how long the engine took.
func (m *Metrics) RecordWord(ctx context.Context, status string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.Words.Add(ctx, 1, attrs)
	m.TranslateDuration.Record(ctx, elapsed.Seconds(), attrs)
}
