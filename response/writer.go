package response

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// ResponseWriter writes the parts of a response in wire order.
type ResponseWriter struct {
	w     io.Writer
	state responseState
}

// NewResponseWriter wraps w.
func NewResponseWriter(w io.Writer) *ResponseWriter {
	return &ResponseWriter{w: w, state: stateStatusLine}
}

func (rw *ResponseWriter) expect(s responseState) error {
	if rw.state != s {
		return fmt.Errorf("%w: want %s, at %s", ErrInvalidWriterState, s, rw.state)
	}
	return nil
}

// WriteStatusLine writes `HTTP/1.1 <code> <reason>\r\n`.
func (rw *ResponseWriter) WriteStatusLine(code StatusCode) error {
	if err := rw.expect(stateStatusLine); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(rw.w, "HTTP/1.1 %d %s\r\n", code, GetStatusReason(code)); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// WriteHeaders writes one line per header followed by the blank line. Lines
// are sorted by name so the output is stable.
func (rw *ResponseWriter) WriteHeaders(h map[string]string) error {
	if err := rw.expect(stateHeaders); err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(h)) {
		if _, err := fmt.Fprintf(rw.w, "%s: %s\r\n", k, h[k]); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(rw.w, "\r\n"); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// WriteBody writes the body bytes as-is.
func (rw *ResponseWriter) WriteBody(b []byte) error {
	if err := rw.expect(stateBody); err != nil {
		return err
	}
	if _, err := rw.w.Write(b); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}
