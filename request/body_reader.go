package request

import (
	"errors"
	"io"
)

// bodyReader yields exactly contentLength bytes from the connection and turns
// an early end of stream into ErrIncompleteBody.
type bodyReader struct {
	reader        io.Reader // io.LimitedReader over the connection
	bytesConsumed int64
	contentLength int64
}

func newBodyReader(r io.Reader, contentLength int64) *bodyReader {
	return &bodyReader{reader: io.LimitReader(r, contentLength), contentLength: contentLength}
}

// Read implements the io.Reader interface.
func (br *bodyReader) Read(p []byte) (int, error) {
	n, err := br.reader.Read(p)
	br.bytesConsumed += int64(n)

	if errors.Is(err, io.EOF) && br.bytesConsumed < br.contentLength {
		return n, ErrIncompleteBody
	}
	return n, err
}

// readBody reads the whole body. The buffer grows with the bytes actually
// received instead of trusting the declared length up front.
func readBody(r io.Reader, contentLength int64) ([]byte, error) {
	if contentLength <= 0 {
		return []byte{}, nil
	}
	return io.ReadAll(newBodyReader(r, contentLength))
}
