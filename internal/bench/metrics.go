package bench

import (
	"context"
	"errors"

	"github.com/antzucaro/matchr"

	"github.com/jamesainslie/go-g2p/engine"
)

// supraSegmental marks syllable boundaries and stress; segmental evaluation
// ignores them.
var supraSegmental = map[string]bool{".": true, "'": true, `"`: true}

// Config holds evaluation parameters.
type Config struct {
	// Segmental drops syllable boundary and stress symbols before
	// comparing.
	Segmental bool
}

// DefaultConfig returns default evaluation configuration.
func DefaultConfig() Config {
	return Config{}
}

// Metrics holds evaluation results.
type Metrics struct {
	Words           int
	WordErrors      int // words whose best match is not exact
	Failures        int // words the translator could not handle
	Symbols         int // reference symbols compared against
	SymbolErrors    int // edit operations against the closest reference
	WordErrorRate   float64
	SymbolErrorRate float64
}

// Result is the outcome for one word.
type Result struct {
	Word       string
	Reference  []string // closest reference
	Hypothesis []string
	Errors     int
	Failed     bool
}

// Evaluate translates every corpus entry and scores it against its closest
// reference. Translation failures count as errors; any other translator
// error aborts the evaluation.
func Evaluate(ctx context.Context, t engine.Translator, c *Corpus, cfg Config) (Metrics, []Result, error) {
	var m Metrics
	results := make([]Result, 0, len(c.Entries))

	for _, e := range c.Entries {
		r, err := EvaluateEntry(ctx, t, e, cfg)
		if err != nil {
			return Metrics{}, nil, err
		}
		results = append(results, r)
		m.add(r)
	}
	m.finish()
	return m, results, nil
}

// EvaluateEntry scores a single entry.
func EvaluateEntry(ctx context.Context, t engine.Translator, e Entry, cfg Config) (Result, error) {
	r := Result{Word: e.Word}
	hyp, err := t.Translate(ctx, e.Graphemes)
	switch {
	case errors.Is(err, engine.ErrTranslationFailure):
		r.Failed = true
	case err != nil:
		return Result{}, err
	default:
		r.Hypothesis = hyp
	}

	h := filter(r.Hypothesis, cfg)
	r.Errors = -1
	for _, ref := range e.References {
		ref = filter(ref, cfg)
		if d := EditDistance(ref, h); r.Errors < 0 || d < r.Errors {
			r.Errors = d
			r.Reference = ref
		}
	}
	if r.Errors < 0 {
		r.Errors = len(h)
	}
	return r, nil
}

func (m *Metrics) add(r Result) {
	m.Words++
	m.Symbols += len(r.Reference)
	m.SymbolErrors += r.Errors
	if r.Failed {
		m.Failures++
	}
	if r.Failed || r.Errors > 0 {
		m.WordErrors++
	}
}

func (m *Metrics) finish() {
	if m.Words > 0 {
		m.WordErrorRate = float64(m.WordErrors) / float64(m.Words)
	}
	if m.Symbols > 0 {
		m.SymbolErrorRate = float64(m.SymbolErrors) / float64(m.Symbols)
	}
}

func filter(symbols []string, cfg Config) []string {
	if !cfg.Segmental {
		return symbols
	}
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if !supraSegmental[s] {
			out = append(out, s)
		}
	}
	return out
}

// symbolBase is the first rune of Unicode plane 15, private use only.
const symbolBase = 0xF0000

// EditDistance returns the Levenshtein distance between two symbol
// sequences. Each distinct symbol is mapped to one private-use rune so that
// multi-character phonemes count as a single edit.
func EditDistance(a, b []string) int {
	ids := make(map[string]rune)
	encode := func(symbols []string) string {
		rs := make([]rune, len(symbols))
		for i, s := range symbols {
			id, ok := ids[s]
			if !ok {
				id = rune(symbolBase + len(ids))
				ids[s] = id
			}
			rs[i] = id
		}
		return string(rs)
	}
	return matchr.Levenshtein(encode(a), encode(b))
}
