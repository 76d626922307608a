package request

import "errors"

// ErrMalformedRequest is returned when the header block is incomplete or the
// request line has fewer than two tokens.
var ErrMalformedRequest = errors.New("malformed request")

// ErrIncompleteBody is returned when the stream ends before the declared
// Content-Length worth of body bytes arrived.
var ErrIncompleteBody = errors.New("incomplete request body")
