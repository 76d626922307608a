// Package lambdaurl serves a route table behind an AWS Lambda Function URL.
package lambdaurl

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/shravanasati/guestserver/request"
	"github.com/shravanasati/guestserver/response"
	"github.com/shravanasati/guestserver/router"
)

// Adapter translates Function URL events into route table dispatches.
type Adapter struct {
	routes router.Lookuper
	logger *log.Logger
}

// NewAdapter wraps routes. A nil logger logs to stdout.
func NewAdapter(routes router.Lookuper, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(os.Stdout, "LAMBDA: ", log.Ldate|log.Ltime|log.Lshortfile)
	}
	return &Adapter{routes: routes, logger: logger}
}

// HandleRequest applies the same method, path and body rules as the TCP
// server. Only a body that fails to decode is reported as an error.
func (a *Adapter) HandleRequest(ctx context.Context, ev events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return events.LambdaFunctionURLResponse{}, fmt.Errorf("decoding request body: %w", err)
		}
		body = decoded
	}

	path := ev.RequestContext.HTTP.Path
	if path == "" {
		path = ev.RawPath
	}
	method, _ := request.ParseMethod(ev.RequestContext.HTTP.Method)

	resp := router.Dispatch(a.routes, method, path, body)
	a.logger.Printf("%s %s %d", ev.RequestContext.HTTP.Method, path, resp.StatusCode)
	return toEvent(resp), nil
}

func toEvent(resp *response.Response) events.LambdaFunctionURLResponse {
	out := events.LambdaFunctionURLResponse{
		StatusCode: int(resp.StatusCode),
		Headers:    make(map[string]string, len(resp.Headers)),
	}
	for k, v := range resp.Headers {
		out.Headers[k] = v
	}
	if resp.Body == nil {
		return out
	}
	if utf8.Valid(resp.Body) {
		out.Body = string(resp.Body)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(resp.Body)
		out.IsBase64Encoded = true
	}
	return out
}

// Start runs the adapter as the Lambda handler. It does not return.
func Start(routes router.Lookuper) {
	lambda.Start(NewAdapter(routes, nil).HandleRequest)
}
