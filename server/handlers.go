package server

import (
	"time"

	"github.com/shravanasati/guestserver/request"
	"github.com/shravanasati/guestserver/response"
	"github.com/shravanasati/guestserver/router"
)

// AccessLogger observes a finished request/response cycle.
type AccessLogger func(req *request.Request, resp *response.Response, elapsed time.Duration)

// Routes is the route table a Server dispatches against.
type Routes interface {
	router.Lookuper
	Register(method request.Method, path string, handler router.Handler) error
}
