// Package bench evaluates grapheme-to-phoneme translators against a gold
// pronunciation sample.
package bench

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/jamesainslie/go-g2p/engine"
)

// Entry is one distinct input of the gold sample with every transcription
// the sample accepts for it.
type Entry struct {
	Word       string
	Graphemes  []string
	References [][]string
}

// Corpus is a gold sample grouped by input.
type Corpus struct {
	Name    string
	Entries []Entry
}

// NewCorpus groups sample pairs by their left side, in first-seen order.
// Repeated inputs collect alternative references. With symbolic set, inputs
// are symbol sequences and are displayed space-separated.
func NewCorpus(name string, sample []engine.Pair, symbolic bool) *Corpus {
	c := &Corpus{Name: name}
	index := make(map[string]int)

	sep := ""
	if symbolic {
		sep = " "
	}
	for _, p := range sample {
		word := strings.Join(p.Left, sep)
		i, ok := index[word]
		if !ok {
			i = len(c.Entries)
			index[word] = i
			c.Entries = append(c.Entries, Entry{Word: word, Graphemes: p.Left})
		}
		c.Entries[i].References = append(c.Entries[i].References, p.Right)
	}
	return c
}

// LoadCorpus reads a gold sample file encoded in enc (nil for UTF-8). In
// phoneme-to-phoneme mode path is "LEFT:RIGHT"; transpose swaps the sides to
// evaluate a phoneme-to-grapheme translator.
func LoadCorpus(path string, p2p, transpose bool, enc encoding.Encoding) (*Corpus, error) {
	sample, err := engine.LoadSampleFile(path, p2p, enc)
	if err != nil {
		return nil, fmt.Errorf("loading sample: %w", err)
	}
	if transpose {
		sample = engine.Transpose(sample)
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return NewCorpus(name, sample, p2p || transpose), nil
}

// Words returns the number of distinct inputs.
func (c *Corpus) Words() int {
	return len(c.Entries)
}
