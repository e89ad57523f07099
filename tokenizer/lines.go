package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineLen bounds a single input line. Longer lines end the sequence with
// an error from the scanner.
const maxLineLen = 1 << 20

// Line is a non-empty, trimmed input line.
type Line struct {
	Index int // 1-based position in the source, blank lines included
	Text  string
}

// LineReader yields the non-empty lines of a text source in order.
// It is single-pass and not safe for concurrent use.
type LineReader struct {
	scanner *bufio.Scanner
	total   int
	empty   int
	err     error
	done    bool
}

// NewLineReader wraps r. The reader is consumed lazily by Next.
func NewLineReader(r io.Reader) *LineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	return &LineReader{scanner: s}
}

// Next returns the next non-empty line. It returns false at end of input or
// after a read error; check Err to tell them apart.
func (lr *LineReader) Next() (Line, bool) {
	if lr.done {
		return Line{}, false
	}
	for lr.scanner.Scan() {
		lr.total++
		text := strings.TrimSpace(lr.scanner.Text())
		if text == "" {
			lr.empty++
			continue
		}
		return Line{Index: lr.total, Text: text}, true
	}
	lr.done = true
	if err := lr.scanner.Err(); err != nil {
		lr.err = fmt.Errorf("reading line %d: %w", lr.total+1, err)
	}
	return Line{}, false
}

// Err returns the read error that ended the sequence, if any.
func (lr *LineReader) Err() error {
	return lr.err
}

// Total returns the number of lines read so far, blank lines included.
func (lr *LineReader) Total() int {
	return lr.total
}

// Empty returns the number of blank lines skipped so far.
func (lr *LineReader) Empty() int {
	return lr.empty
}
