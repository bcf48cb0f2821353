package constants

import "errors"

var (
	ErrNoDomain          = errors.New("domain not set")
	ErrNoAppID           = errors.New("app id not set")
	ErrNoAppKey          = errors.New("app key not set")
	ErrNoMarshaler       = errors.New("marshaler is not set")
	ErrNoUnmarshaler     = errors.New("unmarshaler is not set")
	ErrClientClosed      = errors.New("client is closed")
	ErrMalformedResponse = errors.New("response body is not a JSON object")
	ErrFieldType         = errors.New("field type mismatch")
	ErrMalformedField    = errors.New("malformed field")
	ErrNoRefid           = errors.New("object has no refid")
	ErrNoFileContent     = errors.New("file has neither local bytes nor a url path")
)
