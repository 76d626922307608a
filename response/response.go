package response

import (
	"bytes"
	"io"
	"maps"
	"strconv"
)

// Response is what a handler returns. A nil Body means no body; header names
// are kept exactly as set and a later set of the same name wins.
type Response struct {
	StatusCode StatusCode
	Headers    map[string]string
	Body       []byte
}

// New builds a response and fills in the default headers: Content-Type is
// inferred from the body (text/plain without one) and Content-Length is set
// whenever a body is present.
func New(code StatusCode, body []byte) *Response {
	r := &Response{
		StatusCode: code,
		Headers:    map[string]string{},
		Body:       body,
	}
	if body == nil {
		r.Headers["Content-Type"] = contentTypeText
		return r
	}
	r.Headers["Content-Type"] = detectContentType(body)
	r.Headers["Content-Length"] = strconv.Itoa(len(body))
	return r
}

// NewText is New with a string body.
func NewText(code StatusCode, body string) *Response {
	return New(code, []byte(body))
}

// Empty returns a response without a body.
func Empty(code StatusCode) *Response {
	return New(code, nil)
}

// WithStatusCode replaces the status code.
func (r *Response) WithStatusCode(code StatusCode) *Response {
	r.StatusCode = code
	return r
}

// WithHeader sets a header, overriding any default.
func (r *Response) WithHeader(key, value string) *Response {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[key] = value
	return r
}

// WithHeaders sets every header in h.
func (r *Response) WithHeaders(h map[string]string) *Response {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	maps.Copy(r.Headers, h)
	return r
}

// HasBody reports whether a body is present.
func (r *Response) HasBody() bool {
	return r.Body != nil
}

// Write serializes the response onto w.
func (r *Response) Write(w io.Writer) error {
	rw := NewResponseWriter(w)
	if err := rw.WriteStatusLine(r.StatusCode); err != nil {
		return err
	}
	if err := rw.WriteHeaders(r.Headers); err != nil {
		return err
	}
	if r.Body != nil {
		return rw.WriteBody(r.Body)
	}
	return nil
}

// Bytes returns the wire form of the response.
func (r *Response) Bytes() []byte {
	var b bytes.Buffer
	// writes to a bytes.Buffer do not fail
	_ = r.Write(&b)
	return b.Bytes()
}
