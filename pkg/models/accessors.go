package models

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cast"
)

// Get returns the raw value stored under key.
func (d *Document) Get(key string) (any, error) {
	v, ok := d.fields[key]
	if !ok {
		return nil, &FieldTypeError{Key: key, Unset: true}
	}
	return v, nil
}

func (d *Document) scalar(key, want string) (any, error) {
	v, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	switch n := v.(type) {
	case nil, map[string]any, []any, *FileRef, *InstanceRef:
		return nil, &FieldTypeError{Key: key, Want: want, Value: v}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, &FieldTypeError{Key: key, Want: want, Value: v}
		}
		return f, nil
	}
	return v, nil
}

// GetString coerces scalars to their string form.
func (d *Document) GetString(key string) (string, error) {
	v, err := d.Get(key)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case DateValue:
		return s.String(), nil
	}
	sv, err := d.scalar(key, "string")
	if err != nil {
		return "", err
	}
	out, err := cast.ToStringE(sv)
	if err != nil {
		return "", &FieldTypeError{Key: key, Want: "string", Value: v}
	}
	return out, nil
}

func (d *Document) number(key, want string) (any, error) {
	v, err := d.scalar(key, want)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case bool, DateValue:
		return nil, &FieldTypeError{Key: key, Want: want, Value: v}
	}
	return v, nil
}

// GetInt coerces numbers and numeric strings to int.
func (d *Document) GetInt(key string) (int, error) {
	v, err := d.number(key, "int")
	if err != nil {
		return 0, err
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, &FieldTypeError{Key: key, Want: "int", Value: v}
	}
	return i, nil
}

func (d *Document) GetInt64(key string) (int64, error) {
	v, err := d.number(key, "int64")
	if err != nil {
		return 0, err
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return 0, &FieldTypeError{Key: key, Want: "int64", Value: v}
	}
	return i, nil
}

func (d *Document) GetFloat64(key string) (float64, error) {
	v, err := d.number(key, "float64")
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &FieldTypeError{Key: key, Want: "float64", Value: v}
	}
	return f, nil
}

// GetBool accepts booleans and the strings "true" and "false" in any case.
func (d *Document) GetBool(key string) (bool, error) {
	v, err := d.Get(key)
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(b) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, &FieldTypeError{Key: key, Want: "bool", Value: v}
}

func (d *Document) GetObject(key string) (map[string]any, error) {
	v, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &FieldTypeError{Key: key, Want: "object", Value: v}
	}
	return m, nil
}

func (d *Document) GetArray(key string) ([]any, error) {
	v, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]any)
	if !ok {
		return nil, &FieldTypeError{Key: key, Want: "array", Value: v}
	}
	return a, nil
}

func (d *Document) GetFile(key string) (*FileRef, error) {
	v, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	f, ok := v.(*FileRef)
	if !ok {
		return nil, &FieldTypeError{Key: key, Want: "file", Value: v}
	}
	return f, nil
}

func (d *Document) GetInstance(key string) (*InstanceRef, error) {
	v, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	r, ok := v.(*InstanceRef)
	if !ok {
		return nil, &FieldTypeError{Key: key, Want: "instance", Value: v}
	}
	return r, nil
}

// GetDate also accepts a string in the wire date form.
func (d *Document) GetDate(key string) (DateValue, error) {
	v, err := d.Get(key)
	if err != nil {
		return DateValue{}, err
	}
	switch t := v.(type) {
	case DateValue:
		return t, nil
	case string:
		if date, err := ParseDate(t); err == nil {
			return date, nil
		}
	}
	return DateValue{}, &FieldTypeError{Key: key, Want: "date", Value: v}
}

func (d *Document) OptString(key, fallback string) string {
	if v, err := d.GetString(key); err == nil {
		return v
	}
	return fallback
}

func (d *Document) OptInt(key string, fallback int) int {
	if v, err := d.GetInt(key); err == nil {
		return v
	}
	return fallback
}

func (d *Document) OptInt64(key string, fallback int64) int64 {
	if v, err := d.GetInt64(key); err == nil {
		return v
	}
	return fallback
}

func (d *Document) OptFloat64(key string, fallback float64) float64 {
	if v, err := d.GetFloat64(key); err == nil {
		return v
	}
	return fallback
}

func (d *Document) OptBool(key string, fallback bool) bool {
	if v, err := d.GetBool(key); err == nil {
		return v
	}
	return fallback
}

// Lookup resolves path against the fields of d. path is either a dotted key
// path such as "contents.photo" or a JSONPath expression starting with "$".
func (d *Document) Lookup(path string) (any, bool, error) {
	expr := path
	if !strings.HasPrefix(expr, "$") {
		expr = "$." + expr
	}
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, false, fmt.Errorf("invalid field path '%s': %w", path, err)
	}
	results := x.Get(d.fields)
	if len(results) == 0 {
		return nil, false, nil
	}
	return results[0], true, nil
}

// FieldType reports the Kind of the value at path, KindUndefined when
// nothing is stored there.
func (d *Document) FieldType(path string) Kind {
	v, ok, err := d.Lookup(path)
	if err != nil || !ok {
		return KindUndefined
	}
	return KindOf(v)
}
