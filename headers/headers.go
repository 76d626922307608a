package headers

import (
	"bytes"
	"iter"
	"maps"
	"regexp"
	"strconv"
	"strings"
)

// https://datatracker.ietf.org/doc/html/rfc9110#name-tokens
var tokenRegex = regexp.MustCompile(`^[a-zA-Z0-9!#$%&'*\+\-.^_\x60\|~]+$`)

// Headers is the header block of an incoming request. Field names are matched
// case-insensitively; repeated fields are folded into one comma separated value.
type Headers struct {
	fields map[string]string
}

// NewHeaders creates an empty header block.
func NewHeaders() *Headers {
	return &Headers{fields: map[string]string{}}
}

func fieldValueByteOK(c byte) bool {
	// HTAB, SP, VCHAR and obs-text
	return c == '\t' || c == ' ' || (c >= 0x21 && c != 0x7f)
}

func validValue(v []byte) bool {
	for _, c := range v {
		if !fieldValueByteOK(c) {
			return false
		}
	}
	return true
}

func canonical(name string) string {
	return strings.ToLower(name)
}

// Add appends value to the field name, joining with ", " if it is already set.
// Invalid names or values are dropped.
func (h *Headers) Add(name, value string) {
	if !tokenRegex.MatchString(name) || !validValue([]byte(value)) {
		return
	}
	name = canonical(name)
	if prev, ok := h.fields[name]; ok {
		value = prev + ", " + value
	}
	h.fields[name] = value
}

// Get returns the value of the field, or "" if absent.
func (h *Headers) Get(name string) string {
	return h.fields[canonical(name)]
}

// Has reports whether the field was present in the block.
func (h *Headers) Has(name string) bool {
	_, ok := h.fields[canonical(name)]
	return ok
}

// Remove deletes the field.
func (h *Headers) Remove(name string) {
	delete(h.fields, canonical(name))
}

// All iterates over the fields with lower-cased names.
func (h *Headers) All() iter.Seq2[string, string] {
	return maps.All(h.fields)
}

// Size returns the number of distinct fields.
func (h *Headers) Size() int {
	return len(h.fields)
}

// ContentLength returns the declared body size. Missing, negative or
// unparsable values count as 0. When the field was repeated, the first
// value is used.
func (h *Headers) ContentLength() int64 {
	first, _, _ := strings.Cut(h.Get("content-length"), ",")
	n, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseFieldLine parses one `name: value` line and adds it to the block.
func (h *Headers) ParseFieldLine(line []byte) error {
	name, value, found := bytes.Cut(line, []byte(":"))
	if !found {
		return ErrMalformedHeader
	}

	// leading whitespace before the name is tolerated, whitespace before the colon is not
	name = bytes.TrimLeft(name, " \t")
	if len(name) == 0 || name[len(name)-1] == ' ' || name[len(name)-1] == '\t' {
		return ErrMalformedHeader
	}
	value = bytes.Trim(value, " \t")

	if !tokenRegex.Match(name) || !validValue(value) {
		return ErrMalformedHeader
	}

	h.Add(string(name), string(value))
	return nil
}
