package request

// Method is an HTTP request method understood by the server.
type Method string

const (
	GET  Method = "GET"
	POST Method = "POST"
)

// ParseMethod maps a request-line token to a Method. The match is exact and
// case-sensitive; anything other than GET or POST reports false.
func ParseMethod(token string) (Method, bool) {
	switch m := Method(token); m {
	case GET, POST:
		return m, true
	default:
		return "", false
	}
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	_, ok := ParseMethod(string(m))
	return ok
}

func (m Method) String() string {
	return string(m)
}
