package g2p

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jamesainslie/go-g2p/engine"
)

// massEpsilon absorbs rounding in the running posterior sum: a sum within
// this distance below the threshold counts as reaching it.
const massEpsilon = 1e-9

// Limits bounds ranked enumeration for one word.
type Limits struct {
	// Mass stops enumeration once the collected posterior mass reaches it.
	Mass float64

	// Number caps the hypotheses pulled; zero means no cap.
	Number int
}

// Variant is one selected hypothesis.
type Variant struct {
	Rank      int // 0-based, best first
	Posterior float64
	Phonemes  []string
}

// Transcription returns the phonemes joined by single spaces.
func (v Variant) Transcription() string {
	return strings.Join(v.Phonemes, " ")
}

// SelectVariants pulls hypotheses best-first until the collected mass
// reaches the threshold, the count cap is hit or the cursor runs dry. It never pulls past
// a stop condition. Each posterior is normalized by the cursor's
// LogLikTotal. A word without any hypothesis is a translation failure.
// Hypotheses pulled before a cursor error are returned with the error.
func SelectVariants(ctx context.Context, t engine.Translator, graphemes []string, lim Limits) ([]Variant, error) {
	cur, err := t.NBest(ctx, graphemes)
	if err != nil {
		return nil, err
	}

	total := cur.LogLikTotal()
	var out []Variant
	mass := 0.0
	for mass < lim.Mass-massEpsilon && (lim.Number <= 0 || len(out) < lim.Number) {
		h, err := cur.Next()
		if errors.Is(err, engine.ErrExhausted) {
			break
		}
		if err != nil {
			return out, err
		}
		p := math.Exp(h.LogLik - total)
		out = append(out, Variant{Rank: len(out), Posterior: p, Phonemes: h.Phonemes})
		mass += p
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q: no hypotheses", engine.ErrTranslationFailure, strings.Join(graphemes, ""))
	}
	return out, nil
}
