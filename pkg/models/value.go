package models

import (
	"strings"

	"github.com/goccy/go-json"
)

// Kind classifies a value held by a Document.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
	KindFile
	KindInstance
	KindDate
	KindUnknown
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "bool",
	KindNumber:    "number",
	KindString:    "string",
	KindObject:    "object",
	KindArray:     "array",
	KindFile:      "file",
	KindInstance:  "instance",
	KindDate:      "date",
	KindUnknown:   "unknown",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Value is implemented by the tagged variants a wire document can carry:
// *FileRef, *InstanceRef and DateValue.
type Value interface {
	Kind() Kind
	isValue()
}

// KindOf reports the Kind of a value stored in a Document.
func KindOf(v any) Kind {
	switch v := v.(type) {
	case nil:
		return KindNull
	case Value:
		return v.Kind()
	case bool:
		return KindBool
	case json.Number, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case string:
		return KindString
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	default:
		return KindUnknown
	}
}

// Address identifies a Document on the server. Refid is empty for a
// document that has not been created yet.
type Address struct {
	ContainerID  string
	ResourceType string
	Refid        string
}

// IsLocal reports whether the address has no server-assigned refid.
func (a Address) IsLocal() bool {
	return a.Refid == ""
}

// Path returns the request path of the addressed resource,
// <container>/<resourceType>[/<refid>].
func (a Address) Path() string {
	parts := []string{a.ContainerID, a.ResourceType}
	if a.Refid != "" {
		parts = append(parts, a.Refid)
	}
	return strings.Join(parts, "/")
}

func (a Address) String() string {
	return a.Path()
}

// WithRefid returns a copy of a addressing refid.
func (a Address) WithRefid(refid string) Address {
	a.Refid = refid
	return a
}
