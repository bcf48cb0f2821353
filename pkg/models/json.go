package models

import (
	"bytes"
	"io"

	"github.com/goccy/go-json"

	"github.com/echopf/echo.go/internal/codec"
)

// JSONMarshaler encodes request bodies.
type JSONMarshaler struct {
}

func (j JSONMarshaler) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (j JSONMarshaler) NewEncoder(w io.Writer) codec.Encoder {
	return json.NewEncoder(w)
}

// JSONUnmarshaler decodes response bodies. Numbers are kept as json.Number
// so that integers survive a fetch and push unchanged.
type JSONUnmarshaler struct {
}

func (j JSONUnmarshaler) Unmarshal(data []byte, dst interface{}) error {
	return j.NewDecoder(bytes.NewReader(data)).Decode(dst)
}

func (j JSONUnmarshaler) NewDecoder(r io.Reader) codec.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}
