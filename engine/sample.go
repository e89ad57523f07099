package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/jamesainslie/go-g2p/tokenizer"
)

// LoadPlainSample reads a pronunciation sample.
// Format: word phoneme1 phoneme2 ... (whitespace separated, one entry per line)
// The word is split into one grapheme per rune. Blank lines are skipped.
func LoadPlainSample(r io.Reader) ([]Pair, error) {
	var sample []Pair
	err := scanSample(r, func(word string, phonemes []string) {
		sample = append(sample, Pair{Left: tokenizer.Graphemes(word), Right: phonemes})
	})
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// LoadP2PSample joins two pronunciation samples on their shared words: the
// left transcription becomes the input and the right one the output. When a
// word occurs more than once in a sample the last entry wins.
func LoadP2PSample(left, right io.Reader) ([]Pair, error) {
	l, err := lastByWord(left)
	if err != nil {
		return nil, fmt.Errorf("left sample: %w", err)
	}
	r, err := lastByWord(right)
	if err != nil {
		return nil, fmt.Errorf("right sample: %w", err)
	}

	var sample []Pair
	for _, w := range l.order {
		rp, ok := r.phonemes[w]
		if !ok {
			continue
		}
		sample = append(sample, Pair{Left: l.phonemes[w], Right: rp})
	}
	return sample, nil
}

// LoadSampleFile loads a plain sample from path, or with p2p set a
// "left:right" pair of sample files joined by LoadP2PSample. Files are
// decoded from enc; a nil enc reads them as UTF-8.
func LoadSampleFile(path string, p2p bool, enc encoding.Encoding) ([]Pair, error) {
	if !p2p {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return LoadPlainSample(decodeSample(f, enc))
	}

	leftPath, rightPath, ok := strings.Cut(path, ":")
	if !ok {
		return nil, fmt.Errorf("phoneme-to-phoneme sample %q: want LEFT:RIGHT", path)
	}
	left, err := os.Open(leftPath)
	if err != nil {
		return nil, err
	}
	defer left.Close()
	right, err := os.Open(rightPath)
	if err != nil {
		return nil, err
	}
	defer right.Close()
	return LoadP2PSample(decodeSample(left, enc), decodeSample(right, enc))
}

func decodeSample(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == nil {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

// Transpose swaps the two sides of every pair, turning a G2P sample into a
// P2G one.
func Transpose(sample []Pair) []Pair {
	out := make([]Pair, len(sample))
	for i, p := range sample {
		out[i] = Pair{Left: p.Right, Right: p.Left}
	}
	return out
}

type wordIndex struct {
	phonemes map[string][]string
	order    []string
}

func lastByWord(r io.Reader) (*wordIndex, error) {
	idx := &wordIndex{phonemes: make(map[string][]string)}
	err := scanSample(r, func(word string, phonemes []string) {
		if _, seen := idx.phonemes[word]; !seen {
			idx.order = append(idx.order, word)
		}
		idx.phonemes[word] = phonemes
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func scanSample(r io.Reader, do func(word string, phonemes []string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		do(fields[0], fields[1:])
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("line %d: %w", lineNum+1, err)
	}
	return nil
}
