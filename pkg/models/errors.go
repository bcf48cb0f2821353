package models

import (
	"fmt"

	"github.com/echopf/echo.go/pkg/constants"
)

// FieldTypeError is returned by the typed accessors of a Document when the
// requested key is missing or its value cannot be coerced to the wanted type.
type FieldTypeError struct {
	Key   string
	Want  string
	Value any
	Unset bool
}

func (e *FieldTypeError) Error() string {
	if e.Unset {
		return fmt.Sprintf("field %q is not set", e.Key)
	}
	return fmt.Sprintf("field %q: cannot use %T as %s", e.Key, e.Value, e.Want)
}

func (e *FieldTypeError) Is(target error) bool {
	return target == constants.ErrFieldType
}

// MalformedFieldError reports a reserved field whose shape does not match what
// the server is expected to send. It aborts the inflate that raised it.
type MalformedFieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedFieldError) Error() string {
	msg := fmt.Sprintf("malformed field %q: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

func (e *MalformedFieldError) Is(target error) bool {
	return target == constants.ErrMalformedField
}

func malformed(field, reason string, err error) *MalformedFieldError {
	return &MalformedFieldError{Field: field, Reason: reason, Err: err}
}
