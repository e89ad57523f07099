// Package engine defines the boundary between the apply pipeline and the
// grapheme-to-phoneme decoder that does the actual translation.
//
// Two translators are provided: Memory, a lookup table built from a
// pronunciation sample, and Neural, which decodes the output of an ONNX model
// served by the inference package.
package engine

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrTranslationFailure is returned when no transcription can be produced
	// for a grapheme sequence. It is recoverable: callers skip the word.
	ErrTranslationFailure = errors.New("engine: translation failure")

	// ErrExhausted is returned by Cursor.Next when no hypotheses remain.
	ErrExhausted = errors.New("engine: no more hypotheses")
)

// Hypothesis is one ranked transcription.
type Hypothesis struct {
	LogLik   float64
	Phonemes []string
}

// Cursor enumerates hypotheses for a single grapheme sequence, best first.
// A cursor belongs to one word and is never reused.
type Cursor interface {
	// LogLikTotal is the log of the probability mass the hypothesis
	// likelihoods are normalized against.
	LogLikTotal() float64

	// Next returns the next hypothesis in non-increasing LogLik order, or
	// ErrExhausted.
	Next() (Hypothesis, error)
}

// Translator converts grapheme sequences into phoneme sequences.
type Translator interface {
	// Translate returns the single best transcription.
	Translate(ctx context.Context, graphemes []string) ([]string, error)

	// NBest starts a ranked enumeration of transcriptions.
	NBest(ctx context.Context, graphemes []string) (Cursor, error)
}

// StatsReporter is implemented by translators that keep their own
// diagnostics.
type StatsReporter interface {
	ReportStats(w io.Writer) error
}
