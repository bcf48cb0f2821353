package connection

import (
	"fmt"
	"sort"
	"strings"
)

// FieldError is the per-field part of a validation failure.
type FieldError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

// ServerError is a non-2xx response. Code and Message come from the
// response body, or are synthesized when the body could not be read.
type ServerError struct {
	Status  int
	Code    int
	Message string
	Details map[string]FieldError
}

func (e *ServerError) Error() string {
	msg := fmt.Sprintf("echo: %d %s", e.Code, e.Message)
	if len(e.Details) == 0 {
		return msg
	}
	fields := make([]string, 0, len(e.Details))
	for f := range e.Details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		d := e.Details[f]
		parts = append(parts, fmt.Sprintf("%s: %d %s", f, d.Code, d.Message))
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}

// Is matches another *ServerError carrying the same Code, or any
// *ServerError when the target's Code is zero.
func (e *ServerError) Is(target error) bool {
	t, ok := target.(*ServerError)
	if !ok {
		return false
	}
	return t.Code == 0 || t.Code == e.Code
}

// TransportError is a failure to reach the server or read its response.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("echo: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
