package tokenizer

import (
	"errors"
	"fmt"
)

// ErrUnknownSymbol is returned by Encode for a grapheme missing from the
// vocabulary when no unknown symbol is configured.
var ErrUnknownSymbol = errors.New("tokenizer: symbol not in vocabulary")

// Tokenizer maps grapheme sequences to model input ids and model output
// classes back to phoneme symbols.
//
// It is read-only after construction and safe for concurrent use.
type Tokenizer struct {
	graphemeIDs map[string]int64
	phonemes    []string
	blank       int
	unkID       int64 // -1 when unseen symbols are rejected
}

// New loads a tokenizer from a vocabulary file.
func New(vocabPath string) (*Tokenizer, error) {
	v, err := LoadVocabulary(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}
	return NewFromVocabulary(v)
}

// NewFromVocabulary builds a tokenizer from an in-memory vocabulary.
func NewFromVocabulary(v *Vocabulary) (*Tokenizer, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	t := &Tokenizer{
		graphemeIDs: make(map[string]int64, len(v.Graphemes)),
		phonemes:    append([]string(nil), v.Phonemes...),
		blank:       v.Blank,
		unkID:       -1,
	}
	for i, g := range v.Graphemes {
		t.graphemeIDs[g] = int64(i)
	}
	if v.Unknown != "" {
		t.unkID = t.graphemeIDs[v.Unknown]
	}
	return t, nil
}

// Encode returns the model input ids for graphemes.
func (t *Tokenizer) Encode(graphemes []string) ([]int64, error) {
	ids := make([]int64, len(graphemes))
	for i, g := range graphemes {
		id, ok := t.graphemeIDs[g]
		if !ok {
			if t.unkID < 0 {
				return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, g)
			}
			id = t.unkID
		}
		ids[i] = id
	}
	return ids, nil
}

// Phoneme returns the symbol of output class id.
func (t *Tokenizer) Phoneme(id int) (string, bool) {
	if id < 0 || id >= len(t.phonemes) {
		return "", false
	}
	return t.phonemes[id], true
}

// Blank returns the CTC blank class.
func (t *Tokenizer) Blank() int { return t.blank }

// PhonemeCount returns the number of output classes, blank included.
func (t *Tokenizer) PhonemeCount() int { return len(t.phonemes) }

// Close releases tokenizer resources.
func (t *Tokenizer) Close() error {
	return nil
}
