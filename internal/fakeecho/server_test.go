package fakeecho

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echopf/echo.go/pkg/constants"
)

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(constants.HeaderAppID, "app")
	req.Header.Set(constants.HeaderAppKey, "key")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return rec.Code, res
}

func TestServer(t *testing.T) {
	server := NewServer("app", "key")
	server.Start()
	defer server.Stop()
	assert.NotEmpty(t, server.Address())
}

func TestAuthentication(t *testing.T) {
	server := NewServer("app", "key")
	req := httptest.NewRequest(http.MethodGet, "/blog/entry/e1/rest_api=1.0/", http.NoBody)
	req.Header.Set(constants.HeaderAppID, "app")
	req.Header.Set(constants.HeaderAppKey, "wrong")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "100020")
}

func TestCreateGetDelete(t *testing.T) {
	server := NewServer("app", "key")

	status, created := do(t, server, http.MethodPost, "/db/record/rest_api=1.0/",
		bytes.NewBufferString(`{"title":"hello","n":3}`), "application/json")
	require.Equal(t, http.StatusOK, status)
	refid := created["refid"].(string)
	assert.NotEmpty(t, refid)
	assert.Equal(t, "hello", created["title"])
	assert.Len(t, created["created"], constants.DateLength)

	status, got := do(t, server, http.MethodGet, "/db/record/"+refid+"/rest_api=1.0/", http.NoBody, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", got["title"])

	status, _ = do(t, server, http.MethodDelete, "/db/record/"+refid+"/rest_api=1.0/", http.NoBody, "")
	require.Equal(t, http.StatusOK, status)

	status, res := do(t, server, http.MethodGet, "/db/record/"+refid+"/rest_api=1.0/", http.NoBody, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.EqualValues(t, constants.CodeResourceNotFound, res["error_code"])
}

func TestTree(t *testing.T) {
	server := NewServer("app", "key")
	a := server.Seed("blog", "categories", map[string]any{"refid": "a", "name": "A"})
	server.Seed("blog", "categories", map[string]any{"refid": "b", "name": "B", "parent_refid": a})
	server.Seed("blog", "categories", map[string]any{"refid": "c", "name": "C"})

	_, whole := do(t, server, http.MethodGet, "/blog/categories/rest_api=1.0/", http.NoBody, "")
	roots := whole["categories"].([]any)
	require.Len(t, roots, 2)
	first := roots[0].(map[string]any)
	assert.Equal(t, "a", first["refid"])
	assert.NotContains(t, first, "parent_refid")
	require.Len(t, first["children"], 1)
	assert.Equal(t, "b", first["children"].([]any)[0].(map[string]any)["refid"])

	_, rooted := do(t, server, http.MethodGet, "/blog/categories/a/rest_api=1.0/", http.NoBody, "")
	nodes := rooted["categories"].([]any)
	require.Len(t, nodes, 1)
	assert.Equal(t, "a", nodes[0].(map[string]any)["refid"])
}

func TestMultipartCreate(t *testing.T) {
	server := NewServer("app", "key")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("method", "POST"))
	require.NoError(t, w.WriteField("data[title]", "with photo"))
	require.NoError(t, w.WriteField("data[tags][0]", "x"))
	require.NoError(t, w.WriteField("data[tags][1]", "y"))
	part, err := w.CreateFormFile("data[contents][photo]", "a.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("PNG"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	status, created := do(t, server, http.MethodPost, "/db/record/rest_api=1.0/", &buf, w.FormDataContentType())
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"x", "y"}, created["tags"])

	photo := created["contents"].(map[string]any)["photo"].(map[string]any)
	assert.Equal(t, "file", photo["_type"])
	assert.Equal(t, "a.png", photo["name"])

	reqs := server.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Multipart)
	assert.Equal(t, "POST", reqs[0].FormMethod)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, photo["url_path"].(string), http.NoBody))
	assert.Equal(t, "PNG", rec.Body.String())
}

func TestStub(t *testing.T) {
	server := NewServer("app", "key")
	server.AddStub(Stub{
		Method: http.MethodGet,
		Path:   "/db/record/r1/rest_api=1.0/",
		Status: http.StatusInternalServerError,
		Body:   []byte(`{"error_code":130000,"error_message":"boom"}`),
	})

	status, res := do(t, server, http.MethodGet, "/db/record/r1/rest_api=1.0/", http.NoBody, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "boom", res["error_message"])
}

func TestPagination(t *testing.T) {
	server := NewServer("app", "key")
	for i := 0; i < 5; i++ {
		server.Seed("blog", "entry", map[string]any{"title": i})
	}

	_, res := do(t, server, http.MethodGet, "/blog/archive/rest_api=1.0/?page=2&limit=2&asc=true", http.NoBody, "")
	entries := res["entries"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "entry3", entries[0].(map[string]any)["refid"])

	paginate := res["paginate"].(map[string]any)
	assert.EqualValues(t, 2, paginate["page"])
	assert.EqualValues(t, 1, paginate["prevPage"])
	assert.EqualValues(t, 3, paginate["nextPage"])
	assert.EqualValues(t, 3, paginate["pageCount"])
	assert.EqualValues(t, 5, paginate["count"])
	assert.Equal(t, true, paginate["asc"])
}
