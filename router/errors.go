package router

import "errors"

// ErrUnsupportedMethod is returned when registering a route for a method other
// than GET or POST.
var ErrUnsupportedMethod = errors.New("unsupported method")

// ErrNilHandler is returned when registering a route without a handler.
var ErrNilHandler = errors.New("nil handler")
