package response

import (
	"encoding/json"
)

// NewJSON marshals data and returns it with an explicit application/json
// content type, whatever the payload looks like.
func NewJSON(code StatusCode, data any) (*Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return New(code, body).WithHeader("Content-Type", contentTypeJSON), nil
}
