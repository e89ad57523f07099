package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// punctuation is replaced by a space before whitespace is collapsed.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" + "„“”‚‘’«»"

// Clean prepares free text for sentence-mode input:
// - Lowercases
// - Replaces ASCII punctuation and typographic quotes with spaces
// - Collapses whitespace runs and trims both ends
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = cases.Lower(language.Und).String(text)

	var builder strings.Builder
	needSpace := false

	for _, r := range text {
		if unicode.IsSpace(r) || strings.ContainsRune(punctuation, r) {
			if builder.Len() > 0 {
				needSpace = true
			}
			continue
		}
		if needSpace {
			builder.WriteByte(' ')
			needSpace = false
		}
		builder.WriteRune(r)
	}

	return builder.String()
}

// CleanLines writes the cleaned form of every line of r to w, dropping lines
// that clean to nothing. It returns the number of lines written.
func CleanLines(r io.Reader, w io.Writer) (int, error) {
	lines := NewLineReader(r)
	bw := bufio.NewWriter(w)
	written := 0
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		cleaned := Clean(line.Text)
		if cleaned == "" {
			continue
		}
		if _, err := fmt.Fprintln(bw, cleaned); err != nil {
			return written, err
		}
		written++
	}
	if err := bw.Flush(); err != nil {
		return written, err
	}
	return written, lines.Err()
}
