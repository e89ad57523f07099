package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumByAttr returns the counter value for the data point carrying key=value.
func sumByAttr(t *testing.T, met *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not an int64 sum", met.Name)
	}
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			return dp.Value
		}
	}
	return 0
}

func TestRecordLines(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordLines(ctx, LineInput, 3)
	m.RecordLines(ctx, LineOutput, 2)
	m.RecordLines(ctx, LineEmpty, 0)

	met := findMetric(collect(t, reader), "g2p.lines")
	if met == nil {
		t.Fatal("metric g2p.lines not found")
	}
	if got := sumByAttr(t, met, "kind", LineInput); got != 3 {
		t.Errorf("input lines = %d, want 3", got)
	}
	if got := sumByAttr(t, met, "kind", LineOutput); got != 2 {
		t.Errorf("output lines = %d, want 2", got)
	}
	if got := sumByAttr(t, met, "kind", LineEmpty); got != 0 {
		t.Errorf("empty lines = %d, want no data point", got)
	}
}

func TestRecordWord(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordWord(ctx, StatusTranslated, time.Millisecond)
	m.RecordWord(ctx, StatusTranslated, 2*time.Millisecond)
	m.RecordWord(ctx, StatusFailed, time.Millisecond)

	rm := collect(t, reader)

	words := findMetric(rm, "g2p.words")
	if words == nil {
		t.Fatal("metric g2p.words not found")
	}
	if got := sumByAttr(t, words, "status", StatusTranslated); got != 2 {
		t.Errorf("translated = %d, want 2", got)
	}
	if got := sumByAttr(t, words, "status", StatusFailed); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}

	dur := findMetric(rm, "g2p.translate.duration")
	if dur == nil {
		t.Fatal("metric g2p.translate.duration not found")
	}
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("g2p.translate.duration is not a histogram")
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("duration samples = %d, want 3", count)
	}
}

func TestDefaultMetrics(t *testing.T) {
	if DefaultMetrics() != DefaultMetrics() {
		t.Error("DefaultMetrics should return the same instance")
	}
}
