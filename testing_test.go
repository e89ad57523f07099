package g2p

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-g2p/engine"
)

// scripted is a translator with canned answers keyed by the joined
// graphemes. Ranked answers are given as posteriors; hypothesis i of key k
// transcribes to "k i".
type scripted struct {
	best  map[string][]string
	fail  map[string]error
	nbest map[string][]float64
	pulls int
}

func (s *scripted) Translate(_ context.Context, graphemes []string) ([]string, error) {
	key := strings.Join(graphemes, "")
	if err, ok := s.fail[key]; ok {
		return nil, err
	}
	if p, ok := s.best[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", engine.ErrTranslationFailure, key)
}

func (s *scripted) NBest(_ context.Context, graphemes []string) (engine.Cursor, error) {
	key := strings.Join(graphemes, "")
	if err, ok := s.fail[key]; ok {
		return nil, err
	}
	posteriors, ok := s.nbest[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrTranslationFailure, key)
	}
	return &scriptedCursor{owner: s, key: key, posteriors: posteriors}, nil
}

// scriptedCursor normalizes against log 2 so posteriors only come out right
// when LogLikTotal is honoured.
type scriptedCursor struct {
	owner      *scripted
	key        string
	posteriors []float64
	next       int
}

func (c *scriptedCursor) LogLikTotal() float64 {
	return math.Log(2)
}

func (c *scriptedCursor) Next() (engine.Hypothesis, error) {
	if c.next >= len(c.posteriors) {
		return engine.Hypothesis{}, engine.ErrExhausted
	}
	c.owner.pulls++
	p := c.posteriors[c.next]
	h := engine.Hypothesis{
		LogLik:   math.Log(2 * p),
		Phonemes: []string{c.key, strconv.Itoa(c.next)},
	}
	c.next++
	return h, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
