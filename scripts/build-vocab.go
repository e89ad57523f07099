//go:build ignore

// Build the symbol vocabulary of a G2P model from its training sample.
// Grapheme id 0 is the unknown symbol and phoneme class 0 the CTC blank.
// Usage: go run ./scripts/build-vocab.go -sample train.txt -output g2p.vocab
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/jamesainslie/go-g2p/engine"
	"github.com/jamesainslie/go-g2p/tokenizer"
)

const (
	unknownSymbol = "<unk>"
	blankSymbol   = "<blank>"
)

func main() {
	var (
		samplePath = flag.String("sample", "testdata/cmudict/train.txt", "training sample")
		output     = flag.String("output", "testdata/g2p.vocab", "vocabulary file to write")
	)
	flag.Parse()

	f, err := os.Open(*samplePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", *samplePath, err)
		os.Exit(1)
	}
	sample, err := engine.LoadPlainSample(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *samplePath, err)
		os.Exit(1)
	}

	graphemes := make(map[string]struct{})
	phonemes := make(map[string]struct{})
	for _, p := range sample {
		for _, g := range p.Left {
			graphemes[g] = struct{}{}
		}
		for _, ph := range p.Right {
			phonemes[ph] = struct{}{}
		}
	}

	v := &tokenizer.Vocabulary{
		Graphemes: append([]string{unknownSymbol}, sortedKeys(graphemes)...),
		Phonemes:  append([]string{blankSymbol}, sortedKeys(phonemes)...),
		Blank:     0,
		Unknown:   unknownSymbol,
	}
	if err := v.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid vocabulary: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, v.Marshal(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("  -> %s (%d graphemes, %d phonemes)\n", *output, len(v.Graphemes), len(v.Phonemes))
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
