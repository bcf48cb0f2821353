package models

import (
	"regexp"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
)

var containerPattern = regexp.MustCompile(`^/([^/]+)`)

// InstanceRef is a field value pointing at another Document. The referenced
// document's fields, as far as the server embedded them, are available
// through the embedded *Document.
type InstanceRef struct {
	*Document
	URLPath string
}

// NewInstanceRef returns a reference to the document at addr with no
// embedded fields.
func NewInstanceRef(addr Address) *InstanceRef {
	return &InstanceRef{Document: NewDocument(addr)}
}

// RefTo returns a reference to an existing document.
func RefTo(doc *Document) *InstanceRef {
	return &InstanceRef{Document: doc}
}

func (r *InstanceRef) Kind() Kind { return KindInstance }
func (r *InstanceRef) isValue()   {}

func (r *InstanceRef) deflate() any {
	if r == nil || r.Document == nil || r.Address().Refid == "" {
		return nil
	}
	return r.Address().Refid
}

func (r *InstanceRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.deflate())
}

type instanceSnapshot struct {
	URLPath  string           `cbor:"url_path,omitempty"`
	Document documentSnapshot `cbor:"document"`
}

func (r *InstanceRef) MarshalCBOR() ([]byte, error) {
	doc, err := r.Document.snapshot()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(cbor.Tag{
		Number:  uint64(InstanceTag),
		Content: instanceSnapshot{URLPath: r.URLPath, Document: doc},
	})
}

func (r *InstanceRef) UnmarshalCBOR(data []byte) error {
	var s instanceSnapshot
	if err := unmarshalTagged(data, InstanceTag, &s); err != nil {
		return err
	}
	doc, err := s.Document.restore()
	if err != nil {
		return err
	}
	*r = InstanceRef{Document: doc, URLPath: s.URLPath}
	return nil
}

// instanceFromWire builds an InstanceRef from an object tagged
// {"_type":"instance"}. ok is false when the object does not carry enough
// to address a document, in which case the caller keeps the raw object.
func instanceFromWire(m map[string]any) (ref *InstanceRef, ok bool, err error) {
	refid, _ := m["refid"].(string)
	resourceType, _ := m["resource_type"].(string)
	urlPath, _ := m["url_path"].(string)
	if refid == "" || resourceType == "" {
		return nil, false, nil
	}
	match := containerPattern.FindStringSubmatch(urlPath)
	if match == nil {
		return nil, false, nil
	}

	payload := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case typeKey, "refid", "resource_type", "url_path":
		default:
			payload[k] = v
		}
	}

	addr := Address{ContainerID: match[1], ResourceType: resourceType, Refid: refid}
	doc, err := Inflate(addr, payload)
	if err != nil {
		return nil, false, err
	}
	return &InstanceRef{Document: doc, URLPath: urlPath}, true, nil
}
