package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rrrgame/internal/httperr"
)

// Status lines used on the wire. The reason strings are part of the protocol
// surface the frontend matches on; do not normalise them.
const (
	StatusOK                  = "200 OK"
	StatusBadRequest          = "400 Bad request"
	StatusUnauthorized        = "401 Unauthorized"
	StatusForbidden           = "403 Forbidden"
	StatusNotFound            = "404 Not found"
	StatusConflict            = "409 Conflict"
	StatusInternalServerError = "500 Internal Server Error"
	StatusNotImplemented      = "501 Not implemented"
	StatusServiceUnavailable  = "503 Service unavailable"
)

// Response is a structured reply ready to be rendered onto the wire.
type Response struct {
	Status  string
	Headers map[string]string
	Body    string
}

// OK wraps a success body.
func OK(body string) Response {
	return Response{Status: StatusOK, Body: body}
}

type errorBody struct {
	ErrorMessage string `json:"error_message"`
}

// FromError converts a domain failure into its wire form. Anything that is
// not an *httperr.Error is a bug or store malfunction and maps to 500.
func FromError(err error) Response {
	var herr *httperr.Error
	if !errors.As(err, &herr) {
		herr = httperr.Internal("internal server error")
	}

	status := StatusInternalServerError
	switch herr.Kind {
	case httperr.KindBadRequest:
		status = StatusBadRequest
	case httperr.KindUnauthorized:
		status = StatusUnauthorized
	case httperr.KindForbidden:
		status = StatusForbidden
	case httperr.KindNotFound:
		status = StatusNotFound
	case httperr.KindConflict:
		status = StatusConflict
	case httperr.KindNotImplemented:
		status = StatusNotImplemented
	case httperr.KindUnavailable:
		status = StatusServiceUnavailable
	}

	body, _ := json.Marshal(errorBody{ErrorMessage: herr.Message})
	return Response{Status: status, Body: string(body)}
}

// Render serialises the response: status line, optional headers, then
// Content-Length and the body.
func (r Response) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %s\r\n", r.Status)
	for name, value := range r.Headers {
		fmt.Fprintf(&b, "%s: %s\r\n", name, value)
	}
	fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n%s", len(r.Body), r.Body)
	return b.String()
}

// OptionsHeaders builds the preflight headers advertising the allowed
// methods for a resource.
func OptionsHeaders(allowedMethods []string) map[string]string {
	return map[string]string{
		"Connection":                   "keep-alive",
		"Access-Control-Allow-Origin":  "http://localhost:5500",
		"Access-Control-Allow-Methods": strings.Join(allowedMethods, ", "),
		"Access-Control-Allow-Headers": "keep-alive, Content-Type",
		"Access-Control-Max-Age":       "86400",
	}
}
