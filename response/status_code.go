package response

// StatusCode is the numeric status of a response.
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusCreated             StatusCode = 201
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusMethodNotAllowed    StatusCode = 405
	StatusInternalServerError StatusCode = 500
)

// unknownReason is used for every code missing from reasonPhrases.
const unknownReason = "Unknown Status"

// Codes outside this table, 405 included, are written with unknownReason.
var reasonPhrases = map[StatusCode]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusInternalServerError: "Internal Server Error",
}

// GetStatusReason returns the reason phrase for the given status code.
func GetStatusReason(s StatusCode) string {
	if reason, ok := reasonPhrases[s]; ok {
		return reason
	}
	return unknownReason
}
