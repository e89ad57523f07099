// Package tokenizer turns raw text into the word stream consumed by the
// grapheme-to-phoneme pipeline.
//
// A LineReader yields trimmed, non-empty lines tagged with their position in
// the source. An Extractor splits those lines into words according to a Mode
// and attaches the grapheme sequence handed to the translation engine.
package tokenizer

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Mode selects how input lines are split into words.
type Mode int

const (
	// ModeSentence treats each line as a sentence of whitespace-separated
	// words. Every word carries the id of its sentence.
	ModeSentence Mode = iota

	// ModeWord treats each line as a single word.
	ModeWord

	// ModePhonemeToPhoneme reads "key sym1 sym2 ..." lines.
	ModePhonemeToPhoneme

	// ModeTranspose reads "key<TAB>sym1 sym2 ..." lines, or a bare symbol
	// sequence that doubles as its own key.
	ModeTranspose
)

// String returns the mode name used in configuration files.
func (m Mode) String() string {
	switch m {
	case ModeSentence:
		return "sentence"
	case ModeWord:
		return "word"
	case ModePhonemeToPhoneme:
		return "phoneme-to-phoneme"
	case ModeTranspose:
		return "transpose"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "sentence":
		return ModeSentence, nil
	case "word":
		return ModeWord, nil
	case "phoneme-to-phoneme", "p2p":
		return ModePhonemeToPhoneme, nil
	case "transpose":
		return ModeTranspose, nil
	}
	return ModeSentence, fmt.Errorf("unknown mode %q", s)
}

// ErrFormat marks a line whose layout does not match the selected mode.
var ErrFormat = errors.New("tokenizer: unrecognized line format")

// Kind tells a word item from a format error.
type Kind int

const (
	KindWord Kind = iota
	KindFormatError
)

// Item is one unit of work for the translation engine.
type Item struct {
	Kind       Kind
	Line       int
	Word       string
	Graphemes  []string
	SentenceID string // empty outside ModeSentence
	Err        error  // set for KindFormatError
}

// Extractor pulls lines from a LineReader and yields words.
type Extractor struct {
	lines   *LineReader
	mode    Mode
	logger  *slog.Logger
	pending []Item
	words   int
}

// NewExtractor creates an Extractor over lines. A nil logger falls back to
// slog.Default.
func NewExtractor(lines *LineReader, mode Mode, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{lines: lines, mode: mode, logger: logger}
}

// Next returns the next item, or false once the underlying lines are
// exhausted.
func (e *Extractor) Next() (Item, bool) {
	for len(e.pending) == 0 {
		line, ok := e.lines.Next()
		if !ok {
			return Item{}, false
		}
		e.pending = e.split(line)
	}
	it := e.pending[0]
	e.pending = e.pending[1:]
	return it, true
}

// Words returns the number of word items produced so far.
func (e *Extractor) Words() int {
	return e.words
}

func (e *Extractor) split(line Line) []Item {
	switch e.mode {
	case ModeWord:
		e.words++
		return []Item{{Kind: KindWord, Line: line.Index, Word: line.Text, Graphemes: Graphemes(line.Text)}}
	case ModePhonemeToPhoneme:
		fields := strings.Fields(line.Text)
		if len(fields) < 2 {
			return []Item{e.formatError(line, "expected a key followed by symbols")}
		}
		e.words++
		return []Item{{Kind: KindWord, Line: line.Index, Word: fields[0], Graphemes: fields[1:]}}
	case ModeTranspose:
		fields := strings.Split(line.Text, "\t")
		switch len(fields) {
		case 1:
			e.words++
			return []Item{{Kind: KindWord, Line: line.Index, Word: fields[0], Graphemes: Symbols(fields[0])}}
		case 2:
			e.words++
			return []Item{{Kind: KindWord, Line: line.Index, Word: fields[0], Graphemes: Symbols(fields[1])}}
		default:
			return []Item{e.formatError(line, fmt.Sprintf("expected 1 or 2 tab-separated fields, got %d", len(fields)))}
		}
	}

	words := strings.Fields(line.Text)
	if len(words) == 0 {
		e.logger.Warn("line contains no words after tokenization", "line", line.Index, "text", line.Text)
		return nil
	}
	id := SentenceID(line.Index, line.Text)
	items := make([]Item, len(words))
	for i, w := range words {
		items[i] = Item{Kind: KindWord, Line: line.Index, Word: w, Graphemes: Graphemes(w), SentenceID: id}
	}
	e.words += len(words)
	return items
}

func (e *Extractor) formatError(line Line, reason string) Item {
	err := fmt.Errorf("%w: line %d: %s", ErrFormat, line.Index, reason)
	e.logger.Error("unknown format in input", "line", line.Index, "text", line.Text, "err", err)
	return Item{Kind: KindFormatError, Line: line.Index, Err: err}
}

// Graphemes splits a word into one symbol per rune.
func Graphemes(word string) []string {
	out := make([]string, 0, len(word))
	for _, r := range word {
		out = append(out, string(r))
	}
	return out
}

// Symbols splits a whitespace-delimited symbol sequence.
func Symbols(s string) []string {
	return strings.Fields(s)
}

// SentenceID builds the key under which the words of one input line are
// grouped. The line index keeps repeated sentences apart.
func SentenceID(line int, text string) string {
	return strconv.Itoa(line) + ":" + text
}

// SentenceText strips the line prefix added by SentenceID.
func SentenceText(id string) string {
	_, text, ok := strings.Cut(id, ":")
	if !ok {
		return id
	}
	return text
}
