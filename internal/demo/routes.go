// Package demo holds the sample routes served by the commands.
package demo

import (
	"net/url"

	"github.com/shravanasati/guestserver/response"
	"github.com/shravanasati/guestserver/router"
)

// Registrar is anything routes can be registered on.
type Registrar interface {
	Get(path string, handler router.Handler)
	Post(path string, handler router.Handler)
}

// Register installs the sample routes.
func Register(r Registrar) {
	r.Get("/", home)
	r.Get("/json", greeting)
	r.Post("/echo", echo)
	r.Post("/submit", submit)
}

func home(body []byte) *response.Response {
	return response.NewText(response.StatusOK, "Hello, world!")
}

func greeting(body []byte) *response.Response {
	resp, err := response.NewJSON(response.StatusOK, map[string]any{
		"hello": 1,
		"hi":    "bye",
	})
	if err != nil {
		return response.Empty(response.StatusInternalServerError)
	}
	return resp
}

func echo(body []byte) *response.Response {
	if body == nil {
		return response.Empty(response.StatusBadRequest)
	}
	return response.New(response.StatusOK, body)
}

// submit reads an `a=1&b=2` form body and answers with it as a JSON object.
func submit(body []byte) *response.Response {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return response.NewText(response.StatusBadRequest, err.Error())
	}

	fields := make(map[string]string, len(values))
	for k, v := range values {
		if k == "" {
			continue
		}
		fields[k] = v[0]
	}

	resp, err := response.NewJSON(response.StatusCreated, fields)
	if err != nil {
		return response.Empty(response.StatusInternalServerError)
	}
	return resp
}
