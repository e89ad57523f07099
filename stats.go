package g2p

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jamesainslie/go-g2p/internal/observe"
	"github.com/jamesainslie/go-g2p/tokenizer"
)

// Stats summarizes one Apply run.
type Stats struct {
	InputLines   int // non-empty input lines
	OutputLines  int // sentence lines or answered words written
	TotalLines   int // input lines read, blank included
	EmptyLines   int
	Words        int // words handed to the engine
	Translated   int
	Failed       int
	FormatErrors int // lines skipped for an unrecognized layout
	Variants     int // hypotheses pulled in variant mode
	Errors       int // recoverable errors of any kind
}

// Mismatch reports whether the run wrote a different number of lines than
// it read. It is a diagnostic, not a failure.
func (s Stats) Mismatch() bool {
	return s.InputLines > 0 && s.InputLines != s.OutputLines
}

// Report writes a human-readable summary to w.
func (s Stats) Report(w io.Writer) error {
	_, err := fmt.Fprintf(w, `Processing Summary:
  Input lines: %d
  Output lines: %d
  Empty lines skipped: %d
  Total words processed: %d
  Successfully converted words: %d
  Failed conversions: %d
  Format errors: %d
  Variants: %d
  Total errors: %d
`, s.InputLines, s.OutputLines, s.EmptyLines, s.Words, s.Translated, s.Failed, s.FormatErrors, s.Variants, s.Errors)
	return err
}

// tracker accumulates Stats during a run and mirrors them to metrics.
type tracker struct {
	stats   Stats
	metrics *observe.Metrics
}

func (t *tracker) translated(ctx context.Context, elapsed time.Duration) {
	t.stats.Words++
	t.stats.Translated++
	t.metrics.RecordWord(ctx, observe.StatusTranslated, elapsed)
}

func (t *tracker) failed(ctx context.Context, elapsed time.Duration) {
	t.stats.Words++
	t.stats.Failed++
	t.stats.Errors++
	t.metrics.RecordWord(ctx, observe.StatusFailed, elapsed)
}

func (t *tracker) formatError(ctx context.Context) {
	t.stats.FormatErrors++
	t.stats.Errors++
	t.metrics.FormatErrors.Add(ctx, 1)
}

func (t *tracker) variants(ctx context.Context, n int) {
	if n == 0 {
		return
	}
	t.stats.Variants += n
	t.metrics.Variants.Add(ctx, int64(n))
}

func (t *tracker) output() {
	t.stats.OutputLines++
}

// finish folds in the line counts and returns the final Stats.
func (t *tracker) finish(ctx context.Context, lines *tokenizer.LineReader, sentences int) Stats {
	t.stats.OutputLines += sentences
	t.stats.TotalLines = lines.Total()
	t.stats.EmptyLines = lines.Empty()
	t.stats.InputLines = lines.Total() - lines.Empty()

	t.metrics.RecordLines(ctx, observe.LineInput, t.stats.InputLines)
	t.metrics.RecordLines(ctx, observe.LineOutput, t.stats.OutputLines)
	t.metrics.RecordLines(ctx, observe.LineEmpty, t.stats.EmptyLines)
	return t.stats
}
