package server

import (
	"log"
	"runtime/debug"
	"time"

	"github.com/shravanasati/guestserver/response"
)

// ServerOpts configures a Server. The zero value is usable.
type ServerOpts struct {
	// The address for the server to listen on. A bare port such as "8080" is
	// treated as ":8080". Defaults to ":8080".
	Address string

	// Recovery takes the value recovered from a panicking handler and returns
	// the response written in its place.
	Recovery func(any) *response.Response

	// AccessLog, if set, is called after every dispatched request. Requests
	// answered with 400 because the header block could not be parsed, and
	// requests whose body was cut short, never reach it; those are reported
	// through ErrorLog instead.
	AccessLog AccessLogger

	// ErrorLog receives accept and connection errors. Defaults to log.Default().
	ErrorLog *log.Logger

	// Read and write deadlines per connection. Zero means no deadline, and a
	// client that stalls keeps its connection goroutine blocked.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

const defaultAddress = ":8080"

var defaultRecovery = func(r any) *response.Response {
	log.Println("recovered from panic:", r)
	debug.PrintStack()
	return response.Empty(response.StatusInternalServerError)
}

func (o ServerOpts) withDefaults() ServerOpts {
	if o.Address == "" {
		o.Address = defaultAddress
	}
	o.Address = NormalizeAddress(o.Address)
	if o.Recovery == nil {
		o.Recovery = defaultRecovery
	}
	if o.ErrorLog == nil {
		o.ErrorLog = log.Default()
	}
	return o
}

// NormalizeAddress turns a bare port such as "8080" into ":8080" and
// returns any other address unchanged.
func NormalizeAddress(addr string) string {
	if addr == "" {
		return addr
	}
	for _, c := range addr {
		if c < '0' || c > '9' {
			return addr
		}
	}
	return ":" + addr
}
