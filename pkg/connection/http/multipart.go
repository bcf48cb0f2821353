package http

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"

	"github.com/echopf/echo.go/pkg/models"
)

// encodeMultipart writes body as form data. The form carries the intended
// HTTP method in a "method" field, since multipart requests always go out as
// POST, and the document under nested "data[...]" names. Arrays are keyed
// by index and files with local bytes become file parts.
func encodeMultipart(method string, body map[string]any) (io.Reader, string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	boundary := "echo-" + id.String()
	if err := w.SetBoundary(boundary); err != nil {
		return nil, "", err
	}

	form := map[string]any{"method": method, "data": body}
	if err := writeFields(w, nil, form); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, boundary, nil
}

func writeFields(w *multipart.Writer, keys []string, m map[string]any) error {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		if err := writeField(w, append(keys[:len(keys):len(keys)], k), m[k]); err != nil {
			return err
		}
	}
	return nil
}

func writeField(w *multipart.Writer, keys []string, v any) error {
	name := formName(keys)

	switch v := v.(type) {
	case []any:
		for i, e := range v {
			if err := writeField(w, append(keys[:len(keys):len(keys)], strconv.Itoa(i)), e); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		return writeFields(w, keys, v)
	case *models.FileRef:
		if !v.Local() {
			return nil
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(name), escapeQuotes(v.Name)))
		h.Set("Content-Type", mimeType(v.Name))
		h.Set("Content-Transfer-Encoding", "binary")
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		_, err = part.Write(v.Bytes)
		return err
	default:
		s, err := formValue(v)
		if err != nil {
			return fmt.Errorf("encoding form field %q: %w", name, err)
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(name)))
		h.Set("Content-Type", "text/plain; charset=UTF-8")
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		_, err = io.WriteString(part, s)
		return err
	}
}

// formName renders ["data", "contents", "photo"] as data[contents][photo].
func formName(keys []string) string {
	var b strings.Builder
	for i, k := range keys {
		if i == 0 {
			b.WriteString(k)
			continue
		}
		b.WriteString("[" + k + "]")
	}
	return b.String()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func mimeType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// formValue renders a scalar form field. true is sent as "true" and false
// as an empty value.
func formValue(v any) (string, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return "true", nil
		}
		return "", nil
	case nil:
		return "null", nil
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func queryValue(v any) (string, error) {
	switch v := v.(type) {
	case bool:
		return strconv.FormatBool(v), nil
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return formValue(v)
	}
}
