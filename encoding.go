package g2p

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// LookupEncoding resolves an encoding by IANA name, falling back to the
// WHATWG labels ("latin1", "utf8", ...).
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err == nil && enc != nil {
		return enc, nil
	}
	enc, err = htmlindex.Get(name)
	if err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// decode wraps r so it yields UTF-8.
func decode(r io.Reader, enc encoding.Encoding) io.Reader {
	return transform.NewReader(r, enc.NewDecoder())
}

// output is the buffered, encoding writer a run writes its records to.
// Characters the encoding cannot represent are replaced.
type output struct {
	*bufio.Writer
	tw *transform.Writer
}

func newOutput(w io.Writer, enc encoding.Encoding) *output {
	tw := transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
	return &output{Writer: bufio.NewWriter(tw), tw: tw}
}

// Close flushes buffered records through the encoder. It does not close the
// underlying writer.
func (o *output) Close() error {
	return errors.Join(o.Flush(), o.tw.Close())
}
