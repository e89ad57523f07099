package engine

import (
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"strings"
	"sync/atomic"
)

// Pair is one sample entry: a grapheme sequence and its transcription.
type Pair struct {
	Left  []string
	Right []string
}

type pronunciation struct {
	phonemes []string
	count    int
	last     int
}

// Memory is a translation memory: it answers from a fixed sample instead of
// a trained model. Repeated entries for the same graphemes become ranked
// variants weighted by how often they occur. Among equally frequent
// transcriptions the one that occurs later in the sample ranks first.
//
// Memory is read-only after construction and safe for concurrent use.
type Memory struct {
	entries map[string][]pronunciation

	lookups atomic.Int64
	misses  atomic.Int64
}

// NewMemory builds a Memory from sample pairs.
func NewMemory(sample []Pair) *Memory {
	m := &Memory{entries: make(map[string][]pronunciation)}
	for i, p := range sample {
		key := memoryKey(p.Left)
		prons := m.entries[key]
		found := false
		for j := range prons {
			if slices.Equal(prons[j].phonemes, p.Right) {
				prons[j].count++
				prons[j].last = i
				found = true
				break
			}
		}
		if !found {
			prons = append(prons, pronunciation{
				phonemes: append([]string(nil), p.Right...),
				count:    1,
				last:     i,
			})
		}
		m.entries[key] = prons
	}
	for _, prons := range m.entries {
		sort.SliceStable(prons, func(a, b int) bool {
			if prons[a].count != prons[b].count {
				return prons[a].count > prons[b].count
			}
			return prons[a].last > prons[b].last
		})
	}
	return m
}

// Len returns the number of distinct grapheme sequences.
func (m *Memory) Len() int {
	return len(m.entries)
}

// Translate returns the most frequent transcription of graphemes.
func (m *Memory) Translate(_ context.Context, graphemes []string) ([]string, error) {
	prons, err := m.lookup(graphemes)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), prons[0].phonemes...), nil
}

// NBest enumerates the stored transcriptions by decreasing frequency.
func (m *Memory) NBest(_ context.Context, graphemes []string) (Cursor, error) {
	prons, err := m.lookup(graphemes)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, p := range prons {
		total += p.count
	}
	return &memoryCursor{prons: prons, logLikTotal: math.Log(float64(total))}, nil
}

// ReportStats writes lookup counters to w.
func (m *Memory) ReportStats(w io.Writer) error {
	lookups := m.lookups.Load()
	misses := m.misses.Load()
	_, err := fmt.Fprintf(w, "translation memory: %d entries, %d lookups, %d misses\n", len(m.entries), lookups, misses)
	return err
}

func (m *Memory) lookup(graphemes []string) ([]pronunciation, error) {
	m.lookups.Add(1)
	prons, ok := m.entries[memoryKey(graphemes)]
	if !ok || len(prons) == 0 {
		m.misses.Add(1)
		return nil, fmt.Errorf("%w: %q not in memory", ErrTranslationFailure, strings.Join(graphemes, ""))
	}
	return prons, nil
}

type memoryCursor struct {
	prons       []pronunciation
	next        int
	logLikTotal float64
}

func (c *memoryCursor) LogLikTotal() float64 {
	return c.logLikTotal
}

func (c *memoryCursor) Next() (Hypothesis, error) {
	if c.next >= len(c.prons) {
		return Hypothesis{}, ErrExhausted
	}
	p := c.prons[c.next]
	c.next++
	return Hypothesis{
		LogLik:   math.Log(float64(p.count)),
		Phonemes: append([]string(nil), p.phonemes...),
	}, nil
}

// memoryKey joins symbols with a separator that cannot occur inside a
// whitespace-delimited symbol.
func memoryKey(symbols []string) string {
	return strings.Join(symbols, "\x00")
}
