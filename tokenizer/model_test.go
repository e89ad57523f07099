package tokenizer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func testVocabulary() *Vocabulary {
	return &Vocabulary{
		Graphemes: []string{"<unk>", "a", "b", "c"},
		Phonemes:  []string{"<blank>", "AH", "B", "K"},
		Blank:     0,
		Unknown:   "<unk>",
	}
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.pb")
	if err := os.WriteFile(path, testVocabulary().Marshal(), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("LoadVocabulary failed: %v", err)
	}
	if !reflect.DeepEqual(v, testVocabulary()) {
		t.Errorf("LoadVocabulary() = %+v, want %+v", v, testVocabulary())
	}
}

func TestLoadVocabulary_FileNotFound(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "nonexistent.pb"))
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestParseVocabulary_SkipsUnknownFields(t *testing.T) {
	b := testVocabulary().Marshal()
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 12345)

	v, err := ParseVocabulary(b)
	if err != nil {
		t.Fatalf("ParseVocabulary failed: %v", err)
	}
	if len(v.Graphemes) != 4 {
		t.Errorf("expected 4 graphemes, got %d", len(v.Graphemes))
	}
}

func TestParseVocabulary_Truncated(t *testing.T) {
	b := testVocabulary().Marshal()
	if _, err := ParseVocabulary(b[:len(b)-2]); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestVocabulary_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(v *Vocabulary)
		wantErr bool
	}{
		{"valid", func(v *Vocabulary) {}, false},
		{"no graphemes", func(v *Vocabulary) { v.Graphemes = nil; v.Unknown = "" }, true},
		{"no phonemes", func(v *Vocabulary) { v.Phonemes = nil }, true},
		{"blank out of range", func(v *Vocabulary) { v.Blank = 4 }, true},
		{"duplicate grapheme", func(v *Vocabulary) { v.Graphemes = append(v.Graphemes, "a") }, true},
		{"unknown not a grapheme", func(v *Vocabulary) { v.Unknown = "?" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testVocabulary()
			tt.mutate(v)
			err := v.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
