package g2p

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jamesainslie/go-g2p/tokenizer"
)

type wordResult struct {
	word     string
	phonemes string
}

type sentenceRecord struct {
	id    string
	words []wordResult
}

// aggregator groups translated words by sentence and writes one line per
// sentence once the next sentence starts or the input ends.
//
// At most one record is open at a time. A sentence id is flushed at most
// once; words arriving for an id that was already flushed are dropped.
type aggregator struct {
	w         io.Writer
	separator string
	logger    *slog.Logger

	current   string
	open      map[string]*sentenceRecord
	processed map[string]struct{}
	flushed   int
}

func newAggregator(w io.Writer, separator string, logger *slog.Logger) *aggregator {
	return &aggregator{
		w:         w,
		separator: separator,
		logger:    logger,
		open:      make(map[string]*sentenceRecord),
		processed: make(map[string]struct{}),
	}
}

// begin registers a word of sentence id. A change of id flushes the
// sentence in progress. The record exists from here on, so a sentence whose
// words all fail is still written.
func (a *aggregator) begin(id string) error {
	if id == a.current {
		return nil
	}
	if a.current != "" {
		if err := a.flush(a.current); err != nil {
			return err
		}
	}
	a.current = id

	if _, done := a.processed[id]; done {
		a.logger.Warn("sentence already written, dropping its words", "sentence", id)
		return nil
	}
	if _, ok := a.open[id]; !ok {
		a.open[id] = &sentenceRecord{id: id}
	}
	return nil
}

// add appends a transcription to sentence id.
func (a *aggregator) add(id, word, phonemes string) {
	if rec, ok := a.open[id]; ok {
		rec.words = append(rec.words, wordResult{word: word, phonemes: phonemes})
	}
}

// finish flushes the sentence still in progress.
func (a *aggregator) finish() error {
	if a.current == "" {
		return nil
	}
	err := a.flush(a.current)
	a.current = ""
	return err
}

func (a *aggregator) flush(id string) error {
	rec, ok := a.open[id]
	delete(a.open, id)
	if !ok {
		return nil
	}
	if _, done := a.processed[id]; done {
		return nil
	}
	a.processed[id] = struct{}{}

	phonemes := make([]string, len(rec.words))
	for i, wr := range rec.words {
		phonemes[i] = wr.phonemes
	}
	if _, err := fmt.Fprintf(a.w, "%s\t%s\n", tokenizer.SentenceText(id), strings.Join(phonemes, a.separator)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	a.flushed++
	return nil
}
