package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/shravanasati/guestserver/headers"
)

// RequestLine is the first line of a request.
type RequestLine struct {
	// Method is empty when the verb is not supported.
	Method    Method
	RawMethod string
	Target    string
	// HTTPVersion is the optional third token, as sent.
	HTTPVersion string
}

// Request is a parsed request, valid for one connection.
type Request struct {
	RequestLine
	Headers       *headers.Headers
	ContentLength int64
	Body          []byte
}

func parseRequestLine(line []byte) (*RequestLine, error) {
	fields := bytes.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: request line %q", ErrMalformedRequest, line)
	}

	rl := &RequestLine{
		RawMethod: string(fields[0]),
		Target:    string(fields[1]),
	}
	rl.Method, _ = ParseMethod(rl.RawMethod)
	if len(fields) > 2 {
		rl.HTTPVersion = string(fields[2])
	}
	return rl, nil
}

// readHeader reads the request line and header block from lr. Header lines
// that do not parse are skipped.
func readHeader(lr *lineReader) (*Request, error) {
	var req *Request

	for {
		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: stream ended before end of headers", ErrMalformedRequest)
		}
		if err != nil {
			return nil, err
		}

		if req == nil {
			rl, err := parseRequestLine(line)
			if err != nil {
				return nil, err
			}
			req = &Request{RequestLine: *rl, Headers: headers.NewHeaders()}
			continue
		}

		if len(line) == 0 {
			// blank line, headers over
			break
		}
		_ = req.Headers.ParseFieldLine(line)
	}

	req.ContentLength = req.Headers.ContentLength()
	return req, nil
}

// RequestFromReader reads one request from r: the header block, then exactly
// Content-Length body bytes. Partial reads are fine; the call blocks until the
// request is complete or the stream ends.
func RequestFromReader(r io.Reader) (*Request, error) {
	lr := newLineReader(r)

	req, err := readHeader(lr)
	if err != nil {
		return nil, err
	}

	req.Body, err = readBody(lr.Reader(), req.ContentLength)
	if err != nil {
		return nil, fmt.Errorf("reading %d byte body: %w", req.ContentLength, err)
	}
	return req, nil
}

// HasBody reports whether a non-empty body was declared.
func (r *Request) HasBody() bool {
	return r.ContentLength > 0
}
