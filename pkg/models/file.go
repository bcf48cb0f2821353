package models

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
)

const (
	typeKey      = "_type"
	typeFile     = "file"
	typeInstance = "instance"
)

// FileRef is a file attached to a Document. A FileRef holding local bytes is
// pending upload; otherwise URLPath names the copy stored on the server.
type FileRef struct {
	Name    string
	URLPath string
	Bytes   []byte
}

// NewFile returns a FileRef that will be uploaded on the next push.
func NewFile(name string, data []byte) *FileRef {
	if data == nil {
		data = []byte{}
	}
	return &FileRef{Name: name, Bytes: data}
}

func (f *FileRef) Kind() Kind { return KindFile }
func (f *FileRef) isValue()   {}

// Local reports whether f carries bytes waiting to be uploaded.
func (f *FileRef) Local() bool {
	return f != nil && f.Bytes != nil
}

// Remote reports whether f points at a file stored on the server.
func (f *FileRef) Remote() bool {
	return f != nil && f.URLPath != ""
}

// SetBytes replaces the local content. Passing nil drops the pending upload
// and leaves only the remote reference.
func (f *FileRef) SetBytes(data []byte) {
	f.Bytes = data
}

func (f *FileRef) remoteWire() map[string]any {
	return map[string]any{
		typeKey:    typeFile,
		"name":     f.Name,
		"url_path": f.URLPath,
	}
}

// deflate returns f itself when it has to travel as a multipart part, the
// remote reference when it only exists on the server, or nil.
func (f *FileRef) deflate() any {
	switch {
	case f.Local():
		return f
	case f.Remote():
		return f.remoteWire()
	default:
		return nil
	}
}

func (f *FileRef) MarshalJSON() ([]byte, error) {
	if !f.Remote() {
		return []byte("null"), nil
	}
	return json.Marshal(f.remoteWire())
}

type fileSnapshot struct {
	Name    string `cbor:"name"`
	URLPath string `cbor:"url_path,omitempty"`
	Bytes   []byte `cbor:"bytes"`
}

func (f *FileRef) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  uint64(FileTag),
		Content: fileSnapshot{Name: f.Name, URLPath: f.URLPath, Bytes: f.Bytes},
	})
}

func (f *FileRef) UnmarshalCBOR(data []byte) error {
	var s fileSnapshot
	if err := unmarshalTagged(data, FileTag, &s); err != nil {
		return err
	}
	*f = FileRef{Name: s.Name, URLPath: s.URLPath, Bytes: s.Bytes}
	return nil
}

func fileFromWire(m map[string]any) *FileRef {
	name, _ := m["name"].(string)
	urlPath, _ := m["url_path"].(string)
	return &FileRef{Name: name, URLPath: urlPath}
}
