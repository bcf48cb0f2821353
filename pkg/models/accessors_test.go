package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echopf/echo.go/pkg/constants"
)

func TestAccessors(t *testing.T) {
	doc, err := Inflate(recordAddr, decodeWire(t, `{
		"s": "text",
		"n": 12,
		"f": 1.5,
		"ns": "34",
		"b": true,
		"bs": "FALSE",
		"o": {"k": "v"},
		"a": [1],
		"d": "2020-01-01 10:00:00",
		"file": {"_type":"file","name":"x.txt","url_path":"/f/x.txt"},
		"null": null
	}`))
	require.NoError(t, err)

	s, err := doc.GetString("s")
	require.NoError(t, err)
	assert.Equal(t, "text", s)

	s, err = doc.GetString("n")
	require.NoError(t, err)
	assert.Equal(t, "12", s)

	s, err = doc.GetString("d")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01 10:00:00", s)

	n, err := doc.GetInt("n")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = doc.GetInt("ns")
	require.NoError(t, err)
	assert.Equal(t, 34, n)

	i64, err := doc.GetInt64("n")
	require.NoError(t, err)
	assert.Equal(t, int64(12), i64)

	f, err := doc.GetFloat64("f")
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	b, err := doc.GetBool("b")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = doc.GetBool("bs")
	require.NoError(t, err)
	assert.False(t, b)

	o, err := doc.GetObject("o")
	require.NoError(t, err)
	assert.Equal(t, "v", o["k"])

	a, err := doc.GetArray("a")
	require.NoError(t, err)
	assert.Len(t, a, 1)

	file, err := doc.GetFile("file")
	require.NoError(t, err)
	assert.Equal(t, "x.txt", file.Name)

	d, err := doc.GetDate("d")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())
}

func TestAccessorErrors(t *testing.T) {
	doc, err := Inflate(recordAddr, decodeWire(t, `{"s":"text","b":true,"o":{},"null":null}`))
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"missing", func() error { _, err := doc.GetString("missing"); return err }},
		{"null string", func() error { _, err := doc.GetString("null"); return err }},
		{"object string", func() error { _, err := doc.GetString("o"); return err }},
		{"text int", func() error { _, err := doc.GetInt("s"); return err }},
		{"bool int", func() error { _, err := doc.GetInt("b"); return err }},
		{"text bool", func() error { _, err := doc.GetBool("s"); return err }},
		{"text object", func() error { _, err := doc.GetObject("s"); return err }},
		{"text array", func() error { _, err := doc.GetArray("s"); return err }},
		{"text file", func() error { _, err := doc.GetFile("s"); return err }},
		{"text instance", func() error { _, err := doc.GetInstance("s"); return err }},
		{"text date", func() error { _, err := doc.GetDate("s"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, constants.ErrFieldType)

			var fte *FieldTypeError
			assert.ErrorAs(t, err, &fte)
		})
	}
}

func TestOptAccessors(t *testing.T) {
	doc, err := Inflate(recordAddr, decodeWire(t, `{"s":"text","n":7}`))
	require.NoError(t, err)

	assert.Equal(t, "text", doc.OptString("s", "x"))
	assert.Equal(t, "x", doc.OptString("missing", "x"))
	assert.Equal(t, 7, doc.OptInt("n", 0))
	assert.Equal(t, -1, doc.OptInt("s", -1))
	assert.Equal(t, int64(9), doc.OptInt64("missing", 9))
	assert.Equal(t, 2.5, doc.OptFloat64("s", 2.5))
	assert.True(t, doc.OptBool("n", true))
}

func TestLookupInvalidPath(t *testing.T) {
	doc := NewDocument(recordAddr)
	_, _, err := doc.Lookup("$[")
	assert.Error(t, err)
	assert.Equal(t, KindUndefined, doc.FieldType("$["))
}
