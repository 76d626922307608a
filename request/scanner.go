package request

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// maxLineLength bounds a single request or header line.
const maxLineLength = 8 << 10

var crlf = []byte("\r\n")

// lineReader reads CRLF terminated lines off a buffered stream. Bytes that
// follow the header block stay in the buffer so the body can be read from the
// same reader.
type lineReader struct {
	br *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &lineReader{br: br}
	}
	return &lineReader{br: bufio.NewReaderSize(r, maxLineLength)}
}

// ReadLine returns the next line without its terminator. A stream that ends
// before a terminator is seen reports io.EOF, even if some bytes were read.
func (lr *lineReader) ReadLine() ([]byte, error) {
	line, err := lr.br.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return nil, fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedRequest, lr.br.Size())
	case err != nil:
		return nil, err
	}

	line = bytes.TrimSuffix(line, crlf)
	// tolerate a bare LF terminator
	line = bytes.TrimSuffix(line, []byte("\n"))
	return line, nil
}

// Reader exposes the underlying buffered reader for the body.
func (lr *lineReader) Reader() io.Reader {
	return lr.br
}
