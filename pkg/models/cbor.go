package models

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/echopf/echo.go/internal/codec"
)

type CustomCBORTag uint64

// Tags used by document snapshots. They only ever travel between processes
// running this SDK and never reach the server.
var (
	NumberTag   CustomCBORTag = 51001
	DateTag     CustomCBORTag = 51002
	FileTag     CustomCBORTag = 51003
	InstanceTag CustomCBORTag = 51004
	// GoNumberTag keeps the Go type of a number stored with Set.
	GoNumberTag CustomCBORTag = 51005
)

type CborMarshaler struct {
}

func (c CborMarshaler) Marshal(v interface{}) ([]byte, error) {
	return getCborEncoder().Marshal(v)
}

func (c CborMarshaler) NewEncoder(w io.Writer) codec.Encoder {
	return getCborEncoder().NewEncoder(w)
}

type CborUnmarshaler struct {
}

func (c CborUnmarshaler) Unmarshal(data []byte, dst interface{}) error {
	return getCborDecoder().Unmarshal(data, dst)
}

func (c CborUnmarshaler) NewDecoder(r io.Reader) codec.Decoder {
	return getCborDecoder().NewDecoder(r)
}

var getCborEncoder = sync.OnceValue(func() cbor.EncMode {
	em, err := cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
})

var getCborDecoder = sync.OnceValue(func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
})

func unmarshalTagged(data []byte, tag CustomCBORTag, dst any) error {
	var raw cbor.RawTag
	if err := getCborDecoder().Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Number != uint64(tag) {
		return fmt.Errorf("unexpected tag number: got %d, want %d", raw.Number, tag)
	}
	return getCborDecoder().Unmarshal(raw.Content, dst)
}

// Snapshot encodes doc, local file bytes and ACLs included, so that it can be
// restored later with Restore.
func Snapshot(doc *Document) ([]byte, error) {
	return CborMarshaler{}.Marshal(doc)
}

// Restore decodes a document written by Snapshot.
func Restore(data []byte) (*Document, error) {
	doc := new(Document)
	if err := (CborUnmarshaler{}).Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

type documentSnapshot struct {
	ContainerID  string         `cbor:"container_id"`
	ResourceType string         `cbor:"resource_type"`
	Refid        string         `cbor:"refid,omitempty"`
	Fields       map[string]any `cbor:"fields"`
	ACL          map[string]any `cbor:"acl,omitempty"`
	PendingACL   map[string]any `cbor:"pending_acl,omitempty"`
}

func (d *Document) MarshalCBOR() ([]byte, error) {
	s, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return getCborEncoder().Marshal(s)
}

func (d *Document) UnmarshalCBOR(data []byte) error {
	var s documentSnapshot
	if err := getCborDecoder().Unmarshal(data, &s); err != nil {
		return err
	}
	restored, err := s.restore()
	if err != nil {
		return err
	}
	*d = *restored
	return nil
}

func (d *Document) snapshot() (documentSnapshot, error) {
	s := documentSnapshot{
		ContainerID:  d.addr.ContainerID,
		ResourceType: d.addr.ResourceType,
		Refid:        d.addr.Refid,
		Fields:       toSnapshotValue(d.fields).(map[string]any),
	}
	if d.acl != nil {
		s.ACL = d.acl.Wire()
	}
	if d.newACL != nil {
		s.PendingACL = d.newACL.Wire()
	}
	return s, nil
}

func (s documentSnapshot) restore() (*Document, error) {
	doc := NewDocument(Address{ContainerID: s.ContainerID, ResourceType: s.ResourceType, Refid: s.Refid})
	for k, v := range s.Fields {
		fv, err := fromSnapshotValue(v)
		if err != nil {
			return nil, fmt.Errorf("restoring field %q: %w", k, err)
		}
		doc.fields[k] = fv
	}
	if s.ACL != nil {
		acl, err := ParseACL(s.ACL)
		if err != nil {
			return nil, err
		}
		doc.acl = acl
	}
	if s.PendingACL != nil {
		acl, err := ParseACL(s.PendingACL)
		if err != nil {
			return nil, err
		}
		doc.newACL = acl
	}
	return doc, nil
}

// toSnapshotValue tags json.Number values so they come back as numbers
// rather than strings, and Go numbers so they come back with their type.
// Tagged variants encode themselves.
func toSnapshotValue(v any) any {
	switch v := v.(type) {
	case json.Number:
		return cbor.Tag{Number: uint64(NumberTag), Content: v.String()}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return cbor.Tag{Number: uint64(GoNumberTag), Content: []any{fmt.Sprintf("%T", v), v}}
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = toSnapshotValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = toSnapshotValue(e)
		}
		return out
	default:
		return v
	}
}

func fromSnapshotValue(v any) (any, error) {
	switch v := v.(type) {
	case cbor.Tag:
		return fromSnapshotTag(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			ev, err := fromSnapshotValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			ev, err := fromSnapshotValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	default:
		return v, nil
	}
}

func fromSnapshotTag(tag cbor.Tag) (any, error) {
	data, err := getCborEncoder().Marshal(tag)
	if err != nil {
		return nil, err
	}

	switch CustomCBORTag(tag.Number) {
	case NumberTag:
		s, ok := tag.Content.(string)
		if !ok {
			return nil, fmt.Errorf("number tag holds %T", tag.Content)
		}
		return json.Number(s), nil
	case GoNumberTag:
		return fromGoNumber(tag.Content)
	case DateTag:
		var d DateValue
		err = d.UnmarshalCBOR(data)
		return d, err
	case FileTag:
		f := new(FileRef)
		err = f.UnmarshalCBOR(data)
		return f, err
	case InstanceTag:
		r := new(InstanceRef)
		err = r.UnmarshalCBOR(data)
		return r, err
	default:
		return nil, fmt.Errorf("unexpected tag number: %d", tag.Number)
	}
}

func fromGoNumber(content any) (any, error) {
	pair, ok := content.([]any)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("go number tag holds %T", content)
	}
	typ, _ := pair[0].(string)
	v := pair[1]
	switch typ {
	case "int":
		return cast.ToIntE(v)
	case "int8":
		return cast.ToInt8E(v)
	case "int16":
		return cast.ToInt16E(v)
	case "int32":
		return cast.ToInt32E(v)
	case "int64":
		return cast.ToInt64E(v)
	case "uint":
		return cast.ToUintE(v)
	case "uint8":
		return cast.ToUint8E(v)
	case "uint16":
		return cast.ToUint16E(v)
	case "uint32":
		return cast.ToUint32E(v)
	case "uint64":
		return cast.ToUint64E(v)
	case "float32":
		return cast.ToFloat32E(v)
	case "float64":
		return cast.ToFloat64E(v)
	default:
		return nil, fmt.Errorf("go number tag has unknown type %q", typ)
	}
}
