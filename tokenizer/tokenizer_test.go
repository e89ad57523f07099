package tokenizer

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenizer_Encode(t *testing.T) {
	tok, err := NewFromVocabulary(testVocabulary())
	if err != nil {
		t.Fatalf("NewFromVocabulary failed: %v", err)
	}

	ids, err := tok.Encode([]string{"c", "a", "b"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if want := []int64{3, 1, 2}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Encode() = %v, want %v", ids, want)
	}
}

func TestTokenizer_Encode_Unknown(t *testing.T) {
	tok, err := NewFromVocabulary(testVocabulary())
	if err != nil {
		t.Fatalf("NewFromVocabulary failed: %v", err)
	}

	ids, err := tok.Encode([]string{"a", "z"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if want := []int64{1, 0}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Encode() = %v, want %v", ids, want)
	}
}

func TestTokenizer_Encode_UnknownRejected(t *testing.T) {
	v := testVocabulary()
	v.Unknown = ""
	tok, err := NewFromVocabulary(v)
	if err != nil {
		t.Fatalf("NewFromVocabulary failed: %v", err)
	}

	_, err = tok.Encode([]string{"a", "z"})
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got: %v", err)
	}
}

func TestTokenizer_Phoneme(t *testing.T) {
	tok, err := NewFromVocabulary(testVocabulary())
	if err != nil {
		t.Fatalf("NewFromVocabulary failed: %v", err)
	}

	if p, ok := tok.Phoneme(2); !ok || p != "B" {
		t.Errorf("Phoneme(2) = %q, %v; want B, true", p, ok)
	}
	if _, ok := tok.Phoneme(4); ok {
		t.Error("Phoneme(4) should be out of range")
	}
	if tok.Blank() != 0 {
		t.Errorf("Blank() = %d, want 0", tok.Blank())
	}
	if tok.PhonemeCount() != 4 {
		t.Errorf("PhonemeCount() = %d, want 4", tok.PhonemeCount())
	}
}
