package headers

import "errors"

// ErrMalformedHeader is returned for a field line that is not `name: value`.
var ErrMalformedHeader = errors.New("malformed header line")
