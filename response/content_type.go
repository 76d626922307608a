package response

import "bytes"

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain"
)

// detectContentType guesses JSON when the trimmed body looks like an object.
func detectContentType(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) >= 2 && trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}' {
		return contentTypeJSON
	}
	return contentTypeText
}
