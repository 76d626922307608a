package router

import (
	"github.com/shravanasati/guestserver/request"
	"github.com/shravanasati/guestserver/response"
)

// Lookuper is the read side of a route table.
type Lookuper interface {
	Lookup(method request.Method, path string) (Handler, bool)
}

// Dispatch resolves a request against routes and runs the matched handler.
//
// An unsupported method answers 405 without consulting routes, an unknown
// path answers 404, both with no body. body is passed to the handler only if
// it is non-empty. A handler returning nil is answered with 500.
func Dispatch(routes Lookuper, method request.Method, path string, body []byte) *response.Response {
	if !method.Valid() {
		return response.Empty(response.StatusMethodNotAllowed)
	}

	handler, ok := routes.Lookup(method, path)
	if !ok {
		return response.Empty(response.StatusNotFound)
	}

	if len(body) == 0 {
		body = nil
	}
	resp := handler(body)
	if resp == nil {
		return response.Empty(response.StatusInternalServerError)
	}
	return resp
}
