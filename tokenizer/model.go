package tokenizer

import (
	"errors"
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// Vocabulary wire layout, in protobuf terms:
//
//	message Vocabulary {
//	  repeated string graphemes = 1; // model input symbols, id = index
//	  repeated string phonemes  = 2; // model output classes, id = index
//	  uint32 blank              = 3; // CTC blank class in phonemes
//	  string unknown            = 4; // grapheme substituted for unseen symbols
//	}
const (
	fieldGraphemes protowire.Number = 1
	fieldPhonemes  protowire.Number = 2
	fieldBlank     protowire.Number = 3
	fieldUnknown   protowire.Number = 4
)

// Vocabulary is the symbol inventory of a neural G2P model.
type Vocabulary struct {
	Graphemes []string
	Phonemes  []string
	Blank     int
	Unknown   string
}

// LoadVocabulary loads a vocabulary from a protobuf-encoded file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}
	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, fmt.Errorf("parsing protobuf: %w", err)
	}
	return v, nil
}

// ParseVocabulary decodes the wire form produced by Marshal. Unknown fields
// are skipped.
func ParseVocabulary(b []byte) (*Vocabulary, error) {
	v := &Vocabulary{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == fieldGraphemes && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("field graphemes: %w", protowire.ParseError(n))
			}
			v.Graphemes = append(v.Graphemes, s)
			b = b[n:]
		case num == fieldPhonemes && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("field phonemes: %w", protowire.ParseError(n))
			}
			v.Phonemes = append(v.Phonemes, s)
			b = b[n:]
		case num == fieldBlank && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("field blank: %w", protowire.ParseError(n))
			}
			v.Blank = int(x)
			b = b[n:]
		case num == fieldUnknown && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("field unknown: %w", protowire.ParseError(n))
			}
			v.Unknown = s
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Marshal encodes v in the layout read by ParseVocabulary.
func (v *Vocabulary) Marshal() []byte {
	var b []byte
	for _, g := range v.Graphemes {
		b = protowire.AppendTag(b, fieldGraphemes, protowire.BytesType)
		b = protowire.AppendString(b, g)
	}
	for _, p := range v.Phonemes {
		b = protowire.AppendTag(b, fieldPhonemes, protowire.BytesType)
		b = protowire.AppendString(b, p)
	}
	if v.Blank != 0 {
		b = protowire.AppendTag(b, fieldBlank, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.Blank))
	}
	if v.Unknown != "" {
		b = protowire.AppendTag(b, fieldUnknown, protowire.BytesType)
		b = protowire.AppendString(b, v.Unknown)
	}
	return b
}

// Validate checks that the inventory is usable by a Tokenizer.
func (v *Vocabulary) Validate() error {
	var errs []error
	if len(v.Graphemes) == 0 {
		errs = append(errs, errors.New("vocabulary has no graphemes"))
	}
	if len(v.Phonemes) == 0 {
		errs = append(errs, errors.New("vocabulary has no phonemes"))
	} else if v.Blank < 0 || v.Blank >= len(v.Phonemes) {
		errs = append(errs, fmt.Errorf("blank class %d out of range [0, %d)", v.Blank, len(v.Phonemes)))
	}
	seen := make(map[string]struct{}, len(v.Graphemes))
	for _, g := range v.Graphemes {
		if _, dup := seen[g]; dup {
			errs = append(errs, fmt.Errorf("duplicate grapheme %q", g))
		}
		seen[g] = struct{}{}
	}
	if v.Unknown != "" {
		if _, ok := seen[v.Unknown]; !ok {
			errs = append(errs, fmt.Errorf("unknown symbol %q is not a grapheme", v.Unknown))
		}
	}
	return errors.Join(errs...)
}
