package models

import (
	"sort"
	"time"

	"github.com/echopf/echo.go/pkg/constants"
)

// Reserved fields handled outside the generic conversion rules.
const (
	FieldCreated  = "created"
	FieldModified = "modified"
	FieldACL      = "acl"
)

// Document is the normalized in-memory form of a JSON object returned by the
// server. Values are JSON scalars, map[string]any, []any or one of the
// tagged variants (*FileRef, *InstanceRef, DateValue).
//
// A Document is not safe for concurrent use.
type Document struct {
	addr      Address
	fields    map[string]any
	acl       *ACL
	newACL    *ACL
	multipart bool
}

// NewDocument returns an empty document at addr.
func NewDocument(addr Address) *Document {
	return &Document{addr: addr, fields: map[string]any{}}
}

// Inflate builds a Document from a decoded wire object. wire is not modified.
func Inflate(addr Address, wire map[string]any) (*Document, error) {
	d := NewDocument(addr)
	if err := d.Replace(wire); err != nil {
		return nil, err
	}
	return d, nil
}

// Replace discards every field of d and inflates wire in their place. On
// error d is left as it was.
func (d *Document) Replace(wire map[string]any) error {
	fields := make(map[string]any, len(wire))
	var acl *ACL

	for k, v := range wire {
		switch k {
		case FieldCreated, FieldModified:
			s, ok := v.(string)
			if !ok {
				fields[k] = v
				continue
			}
			date, err := ParseDate(s)
			if err != nil {
				return malformed(k, "invalid date", err)
			}
			fields[k] = date
		case FieldACL:
			parsed, err := ParseACL(v)
			if err != nil {
				return err
			}
			acl = parsed
		default:
			iv, err := inflateValue(v)
			if err != nil {
				return err
			}
			fields[k] = iv
		}
	}

	d.fields = fields
	d.acl = acl
	return nil
}

func inflateValue(v any) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		switch v[typeKey] {
		case typeFile:
			return fileFromWire(v), nil
		case typeInstance:
			ref, ok, err := instanceFromWire(v)
			if err != nil {
				return nil, err
			}
			if ok {
				return ref, nil
			}
		}
		out := make(map[string]any, len(v))
		for k, e := range v {
			iv, err := inflateValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = iv
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			iv, err := inflateValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = iv
		}
		return out, nil
	case string:
		if len(v) == constants.DateLength {
			if date, err := ParseDate(v); err == nil {
				return date, nil
			}
		}
		return v, nil
	default:
		return v, nil
	}
}

// Deflate converts d back into the wire form accepted by the server.
// Server-managed timestamps are dropped and a pending ACL change is emitted
// once, then cleared. Deflate also recomputes Multipart.
func (d *Document) Deflate() map[string]any {
	d.multipart = false

	wire := make(map[string]any, len(d.fields)+1)
	for k, v := range d.fields {
		if k == FieldCreated || k == FieldModified {
			continue
		}
		wire[k] = d.deflateValue(v)
	}

	if d.newACL != nil {
		wire[FieldACL] = d.newACL.Wire()
		d.newACL = nil
	}
	return wire
}

func (d *Document) deflateValue(v any) any {
	switch v := v.(type) {
	case *FileRef:
		if v.Local() {
			d.multipart = true
		}
		return v.deflate()
	case *InstanceRef:
		return v.deflate()
	case DateValue:
		return v.String()
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = d.deflateValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = d.deflateValue(e)
		}
		return out
	default:
		return v
	}
}

// Multipart reports whether the last Deflate found a file with pending
// local bytes, meaning the request has to be sent as multipart form data.
func (d *Document) Multipart() bool {
	return d.multipart
}

func (d *Document) Address() Address {
	return d.addr
}

// SetAddress moves d to addr, typically once the server assigned a refid.
func (d *Document) SetAddress(addr Address) {
	d.addr = addr
}

// Equal reports whether d and o address the same server document. Field
// contents are not compared.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.addr == o.addr
}

// ACL returns the access-control list received from the server, or nil.
func (d *Document) ACL() *ACL {
	return d.acl
}

// SetACL stages acl to be sent on the next Deflate.
func (d *Document) SetACL(acl *ACL) {
	d.newACL = acl
}

// PendingACL returns the ACL staged by SetACL, if any.
func (d *Document) PendingACL() *ACL {
	return d.newACL
}

// Set stores value under key. A time.Time is stored as a DateValue.
func (d *Document) Set(key string, value any) {
	if t, ok := value.(time.Time); ok {
		value = NewDate(t)
	}
	d.fields[key] = value
}

// Remove deletes key and returns the value it held.
func (d *Document) Remove(key string) any {
	v := d.fields[key]
	delete(d.fields, key)
	return v
}

// Accumulate adds value under key. A missing key takes value as is, unless
// value is itself an array, which is then nested in a new one. An existing
// array gets value appended and any other existing value becomes the first
// element of a two-element array.
func (d *Document) Accumulate(key string, value any) {
	cur, ok := d.fields[key]
	switch arr, isArr := cur.([]any); {
	case !ok:
		if _, nested := value.([]any); nested {
			value = []any{value}
		}
		d.fields[key] = value
	case isArr:
		d.fields[key] = append(arr, value)
	default:
		d.fields[key] = []any{cur, value}
	}
}

func (d *Document) Has(key string) bool {
	_, ok := d.fields[key]
	return ok
}

// IsNull reports whether key is missing or holds null.
func (d *Document) IsNull(key string) bool {
	return d.fields[key] == nil
}

// Keys returns the field names in sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.fields))
	for k := range d.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d *Document) Len() int {
	return len(d.fields)
}

// Fields returns a copy of the inflated fields.
func (d *Document) Fields() map[string]any {
	return copyValue(d.fields).(map[string]any)
}

// Clone returns a deep copy of d, including its ACLs.
func (d *Document) Clone() *Document {
	c := &Document{
		addr:      d.addr,
		fields:    d.Fields(),
		multipart: d.multipart,
	}
	if d.acl != nil {
		c.acl = d.acl.Clone()
	}
	if d.newACL != nil {
		c.newACL = d.newACL.Clone()
	}
	return c
}

func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
