// Package codec names the encoding seams shared by the wire transport and
// document snapshots: JSON for requests and responses, CBOR for snapshots.
package codec

import "io"

// Encoder writes one value to the stream it was created for.
type Encoder interface {
	Encode(v any) error
}

// Decoder reads one value from the stream it was created for.
type Decoder interface {
	Decode(v any) error
}

// Marshaler turns request bodies or snapshots into bytes.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
	NewEncoder(w io.Writer) Encoder
}

// Unmarshaler is the inverse of Marshaler. Response decoders must keep
// numbers intact rather than widening them to float64.
type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
	NewDecoder(r io.Reader) Decoder
}
