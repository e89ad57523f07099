package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/jamesainslie/go-g2p/inference"
	"github.com/jamesainslie/go-g2p/tokenizer"
)

const (
	defaultBeam          = 8
	defaultMaxHypotheses = 64

	// maxExpansions bounds the label paths inspected per cursor; many paths
	// collapse to the same transcription.
	maxExpansions = 4096
)

// Scorer runs the acoustic-free G2P model on grapheme ids.
// *inference.Pool satisfies it.
type Scorer interface {
	Infer(ctx context.Context, inputIDs []int64) (inference.Logits, error)
}

// NeuralOption configures a Neural translator.
type NeuralOption func(*Neural)

// WithBeam limits the candidate classes considered per output step during
// ranked enumeration (default: 8).
func WithBeam(n int) NeuralOption {
	return func(nt *Neural) {
		if n > 0 {
			nt.beam = n
		}
	}
}

// WithMaxHypotheses caps the hypotheses a single cursor yields (default: 64).
func WithMaxHypotheses(n int) NeuralOption {
	return func(nt *Neural) {
		if n > 0 {
			nt.maxHypotheses = n
		}
	}
}

// Neural translates with a CTC model: one distribution over phoneme classes
// per output step. The best transcription is the collapsed argmax path; the
// ranked enumeration walks label paths best-first and yields each distinct
// collapsed transcription once, scored by its best path.
//
// Neural is safe for concurrent use if its Scorer is.
type Neural struct {
	tok           *tokenizer.Tokenizer
	scorer        Scorer
	beam          int
	maxHypotheses int

	calls    atomic.Int64
	failures atomic.Int64
}

// NewNeural creates a Neural translator.
func NewNeural(tok *tokenizer.Tokenizer, scorer Scorer, opts ...NeuralOption) *Neural {
	nt := &Neural{
		tok:           tok,
		scorer:        scorer,
		beam:          defaultBeam,
		maxHypotheses: defaultMaxHypotheses,
	}
	for _, opt := range opts {
		opt(nt)
	}
	return nt
}

// Translate returns the greedy CTC transcription of graphemes.
func (nt *Neural) Translate(ctx context.Context, graphemes []string) ([]string, error) {
	logits, err := nt.infer(ctx, graphemes)
	if err != nil {
		return nil, err
	}

	best := make([]int, logits.Steps)
	for t := 0; t < logits.Steps; t++ {
		row := logits.Row(t)
		arg := 0
		for c := 1; c < len(row); c++ {
			if row[c] > row[arg] {
				arg = c
			}
		}
		best[t] = arg
	}

	phonemes, err := nt.symbols(collapse(best, nt.tok.Blank()))
	if err != nil {
		return nil, nt.fail(graphemes, err.Error())
	}
	if len(phonemes) == 0 {
		return nil, nt.fail(graphemes, "empty transcription")
	}
	return phonemes, nil
}

// NBest starts a ranked enumeration of transcriptions. Scores are log
// probabilities, so LogLikTotal is zero.
func (nt *Neural) NBest(ctx context.Context, graphemes []string) (Cursor, error) {
	logits, err := nt.infer(ctx, graphemes)
	if err != nil {
		return nil, err
	}

	logProbs := make([][]float64, logits.Steps)
	for t := range logProbs {
		logProbs[t] = logSoftmax(logits.Row(t))
	}

	return &neuralCursor{
		nt:    nt,
		paths: newKBest(logProbs, nt.beam),
		seen:  make(map[string]struct{}),
	}, nil
}

// ReportStats writes inference counters to w, plus the session queueing
// count when the scorer is a pool.
func (nt *Neural) ReportStats(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "neural translator: %d inferences, %d failures\n", nt.calls.Load(), nt.failures.Load()); err != nil {
		return err
	}
	if p, ok := nt.scorer.(interface{ Waits() int64 }); ok {
		_, err := fmt.Fprintf(w, "session pool: %d waits for a free session\n", p.Waits())
		return err
	}
	return nil
}

func (nt *Neural) infer(ctx context.Context, graphemes []string) (inference.Logits, error) {
	ids, err := nt.tok.Encode(graphemes)
	if err != nil {
		if errors.Is(err, tokenizer.ErrUnknownSymbol) {
			return inference.Logits{}, nt.fail(graphemes, err.Error())
		}
		return inference.Logits{}, err
	}
	if len(ids) == 0 {
		return inference.Logits{}, nt.fail(graphemes, "empty input")
	}

	nt.calls.Add(1)
	logits, err := nt.scorer.Infer(ctx, ids)
	if err != nil {
		return inference.Logits{}, fmt.Errorf("inference: %w", err)
	}
	if logits.Classes != nt.tok.PhonemeCount() {
		return inference.Logits{}, fmt.Errorf("model emits %d classes, vocabulary has %d", logits.Classes, nt.tok.PhonemeCount())
	}
	return logits, nil
}

func (nt *Neural) symbols(classes []int) ([]string, error) {
	out := make([]string, len(classes))
	for i, c := range classes {
		p, ok := nt.tok.Phoneme(c)
		if !ok {
			return nil, fmt.Errorf("class %d outside vocabulary", c)
		}
		out[i] = p
	}
	return out, nil
}

func (nt *Neural) fail(graphemes []string, reason string) error {
	nt.failures.Add(1)
	return fmt.Errorf("%w: %q: %s", ErrTranslationFailure, strings.Join(graphemes, ""), reason)
}

type neuralCursor struct {
	nt       *Neural
	paths    *kbest
	seen     map[string]struct{}
	yielded  int
	expanded int
}

func (c *neuralCursor) LogLikTotal() float64 {
	return 0
}

func (c *neuralCursor) Next() (Hypothesis, error) {
	for c.yielded < c.nt.maxHypotheses && c.expanded < maxExpansions {
		classes, logProb, ok := c.paths.next()
		if !ok {
			break
		}
		c.expanded++

		phonemes, err := c.nt.symbols(collapse(classes, c.nt.tok.Blank()))
		if err != nil || len(phonemes) == 0 {
			continue
		}
		key := strings.Join(phonemes, " ")
		if _, dup := c.seen[key]; dup {
			continue
		}
		c.seen[key] = struct{}{}
		c.yielded++
		return Hypothesis{LogLik: logProb, Phonemes: phonemes}, nil
	}
	return Hypothesis{}, ErrExhausted
}
