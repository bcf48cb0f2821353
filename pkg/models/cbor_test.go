package models

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	doc, err := Inflate(recordAddr, decodeWire(t, `{
		"title": "hello",
		"count": 3,
		"created": "2020-01-01 00:00:00",
		"acl": {"*": {"get": true, "list": false, "edit": false, "delete": false}},
		"contents": {
			"photo": {"_type":"file","name":"a.png","url_path":"/f/a.png"},
			"author": {"_type":"instance","refid":"m1","resource_type":"member","url_path":"/members1/member/m1","name":"ann"},
			"list": ["x", "2020-02-02 02:02:02"]
		}
	}`))
	require.NoError(t, err)
	doc.Set("attachment", NewFile("b.bin", []byte{1, 2, 3}))

	data, err := Snapshot(doc)
	require.NoError(t, err)

	back, err := Restore(data)
	require.NoError(t, err)

	assert.True(t, back.Equal(doc))
	assert.Equal(t, doc.Keys(), back.Keys())
	assert.Equal(t, json.Number("3"), back.Fields()["count"])
	assert.Equal(t, KindDate, back.FieldType("created"))
	assert.Equal(t, KindFile, back.FieldType("contents.photo"))
	assert.Equal(t, KindInstance, back.FieldType("contents.author"))
	assert.Equal(t, KindDate, back.FieldType("$.contents.list[1]"))

	attachment, err := back.GetFile("attachment")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, attachment.Bytes)

	require.NotNil(t, back.ACL())
	assert.Equal(t, doc.ACL().Wire(), back.ACL().Wire())

	assert.Equal(t, doc.Deflate(), back.Deflate())
}

func TestSnapshotKeepsGoNumberTypes(t *testing.T) {
	doc := NewDocument(recordAddr)
	doc.Set("int", 5)
	doc.Set("negative", int64(-7))
	doc.Set("small", uint8(200))
	doc.Set("ratio", 0.25)
	doc.Set("single", float32(1.5))
	doc.Set("nested", map[string]any{"n": 3, "list": []any{int32(4)}})

	data, err := Snapshot(doc)
	require.NoError(t, err)
	back, err := Restore(data)
	require.NoError(t, err)

	fields := back.Fields()
	assert.Equal(t, 5, fields["int"])
	assert.Equal(t, int64(-7), fields["negative"])
	assert.Equal(t, uint8(200), fields["small"])
	assert.Equal(t, 0.25, fields["ratio"])
	assert.Equal(t, float32(1.5), fields["single"])
	assert.Equal(t, map[string]any{"n": 3, "list": []any{int32(4)}}, fields["nested"])
}

func TestSnapshotRejectsUnknownTag(t *testing.T) {
	_, err := fromSnapshotValue(cbor.Tag{Number: 99999, Content: "x"})
	assert.Error(t, err)
}
