//go:build ignore

// Process the CMU pronouncing dictionary into plain pronunciation samples.
// Writes train.txt and test.txt ("word ph1 ph2 ...") plus a JSON manifest.
// Usage: go run ./scripts/process-cmudict.go -input cmudict.dict -output testdata/cmudict
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Manifest describes a processed dictionary split.
type Manifest struct {
	Source       string `json:"source"`
	Words        int    `json:"words"`
	Entries      int    `json:"entries"`
	TrainEntries int    `json:"train_entries"`
	TestEntries  int    `json:"test_entries"`
	Stress       bool   `json:"stress"`
}

type entry struct {
	word     string
	phonemes []string
}

func main() {
	var (
		input    = flag.String("input", "testdata/cmudict.dict", "CMU dictionary file")
		output   = flag.String("output", "testdata/cmudict", "output directory")
		testEach = flag.Int("test-every", 10, "hold out every Nth distinct word for testing")
		stress   = flag.Bool("stress", false, "keep vowel stress digits")
	)
	flag.Parse()

	entries, err := readDict(*input, *stress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", *input, err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *output, err)
		os.Exit(1)
	}

	// Alternate pronunciations stay with their word so the test split only
	// holds unseen words.
	var train, test []entry
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.word]
		if !ok {
			i = len(index)
			index[e.word] = i
		}
		if *testEach > 0 && i%*testEach == *testEach-1 {
			test = append(test, e)
		} else {
			train = append(train, e)
		}
	}

	for name, split := range map[string][]entry{"train.txt": train, "test.txt": test} {
		path := filepath.Join(*output, name)
		if err := writeSample(path, split); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("  -> %s (%d entries)\n", path, len(split))
	}

	m := Manifest{
		Source:       *input,
		Words:        len(index),
		Entries:      len(entries),
		TrainEntries: len(train),
		TestEntries:  len(test),
		Stress:       *stress,
	}
	if err := writeManifest(filepath.Join(*output, "manifest.json"), m); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDone! %d words, %d entries in %s\n", m.Words, m.Entries, *output)
}

func readDict(path string, stress bool) ([]entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	var entries []entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		// Comment lines in the classic distribution
		if strings.HasPrefix(line, ";;;") {
			continue
		}
		// Trailing comments in the GitHub distribution
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		// "word(2)" marks an alternate pronunciation
		word := strings.ToLower(fields[0])
		if i := strings.IndexByte(word, '('); i > 0 {
			word = word[:i]
		}

		phonemes := make([]string, len(fields)-1)
		for i, p := range fields[1:] {
			p = strings.ToLower(p)
			if !stress {
				p = strings.TrimRightFunc(p, unicode.IsDigit)
			}
			phonemes[i] = p
		}
		entries = append(entries, entry{word: word, phonemes: phonemes})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning file: %w", err)
	}
	return entries, nil
}

func writeSample(path string, entries []entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s\n", e.word, strings.Join(e.phonemes, " "))
	}
	return w.Flush()
}

func writeManifest(path string, m Manifest) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(m)
}
