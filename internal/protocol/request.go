package protocol

import (
	"errors"
	"regexp"
	"strings"
)

// Methods accepted on the wire.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
)

// ErrMalformed is returned when raw bytes cannot be parsed into a Request.
var ErrMalformed = errors.New("malformed request")

// Request is a parsed wire request: request line split into its shape
// segments, plus headers and body.
type Request struct {
	Method      string
	Resource    string
	ID          string
	SubResource string
	Parameters  []Param
	Headers     map[string]string
	Body        string
}

// Param is one query parameter. Parameters keep their wire order; lookups
// take the first match.
type Param struct {
	Key   string
	Value string
}

// Param returns the first query parameter with the given key.
func (r *Request) Param(key string) (string, bool) {
	for _, p := range r.Parameters {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Grammar of the request line: lowercase-and-dash resource, alphanumeric id,
// lowercase-and-digit sub-resource, k=v parameters.
var requestLineRe = regexp.MustCompile(
	`^(GET|POST|DELETE|OPTIONS) (/[a-z-]*)(/[a-zA-Z0-9]+)?(/[a-z0-9]+)?(\?[a-z0-9=&-]+)? HTTP/1\.1$`)

// Parse converts raw request text into a Request. Header lines that do not
// split on ": " are skipped; body lines are concatenated verbatim.
func Parse(raw string) (*Request, error) {
	lines := strings.Split(raw, "\n")

	requestLine := ""
	headers := make(map[string]string)
	var body strings.Builder
	inBody := false
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case i == 0:
			requestLine = line
		case inBody:
			body.WriteString(line)
		case line == "":
			inBody = true
		default:
			if name, value, ok := strings.Cut(line, ": "); ok {
				headers[name] = value
			}
		}
	}

	m := requestLineRe.FindStringSubmatch(requestLine)
	if m == nil {
		return nil, ErrMalformed
	}

	req := &Request{
		Method:      m[1],
		Resource:    m[2],
		ID:          strings.TrimPrefix(m[3], "/"),
		SubResource: strings.TrimPrefix(m[4], "/"),
		Parameters:  parseParams(strings.TrimPrefix(m[5], "?")),
		Headers:     headers,
		Body:        body.String(),
	}
	return req, nil
}

// parseParams splits k=v&k=v pairs. Pairs that do not split into exactly a
// key and a value are dropped.
func parseParams(raw string) []Param {
	if raw == "" {
		return nil
	}
	var params []Param
	for _, pair := range strings.Split(raw, "&") {
		parts := strings.Split(pair, "=")
		if len(parts) != 2 {
			continue
		}
		params = append(params, Param{Key: parts[0], Value: parts[1]})
	}
	return params
}
