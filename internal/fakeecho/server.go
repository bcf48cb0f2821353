// Package fakeecho provides an in-memory ECHO REST server for testing
// purposes. It understands the request paths, headers, JSON and multipart
// bodies the SDK sends, keeps resources in memory and answers with the
// response shapes of the real API.
//
// Category and group collections are served as trees built from the
// parent_refid of each node. Entries, records and members are served with
// their categories or groups expanded to objects.
//
// To exercise failure handling, stub responses can be registered for a
// method and path. Stubs are matched before any resource handling.
package fakeecho

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/echopf/echo.go/pkg/constants"
)

const (
	maxMemory  = 32 << 20
	defaultLim = 20
)

// Stub is a pre-configured response for requests matching Method and Path.
type Stub struct {
	Method string
	// Path is the full request path, e.g. "/blog/entry/e1/rest_api=1.0/".
	Path string
	// Status defaults to 200.
	Status int
	// Body is written as is, so it can be invalid JSON.
	Body []byte
	// Delay holds the response back.
	Delay time.Duration
}

// Request is a request received by the server, recorded for assertions.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	// Body is the decoded JSON body, or the data fields of a multipart form.
	Body map[string]any
	// Multipart is true when the body was sent as multipart form data.
	Multipart bool
	// FormMethod is the "method" field of a multipart form.
	FormMethod string
}

type collection struct {
	order []string
	items map[string]map[string]any
}

// Server is a fake ECHO REST server.
type Server struct {
	AppID  string
	AppKey string
	// Now stamps created and modified. It defaults to time.Now.
	Now func() time.Time

	mu          sync.Mutex
	router      *mux.Router
	http        *httptest.Server
	collections map[string]*collection
	files       map[string][]byte
	stubs       []Stub
	requests    []Request
	lastID      int
}

// NewServer creates a fake server accepting the given app credentials.
func NewServer(appID, appKey string) *Server {
	s := &Server{
		AppID:       appID,
		AppKey:      appKey,
		Now:         time.Now,
		collections: map[string]*collection{},
		files:       map[string][]byte{},
	}

	api := "/" + constants.APIVersion + "/"
	s.router = mux.NewRouter()
	s.router.Use(s.record, s.stub, s.authenticate)
	s.router.HandleFunc("/files/{path:.+}", s.handleFile).Methods(http.MethodGet)
	s.router.HandleFunc("/{container}/{resource}"+api, s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/{container}/{resource}"+api, s.handleCreate).Methods(http.MethodPost)
	s.router.HandleFunc("/{container}/{resource}/{refid}"+api, s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/{container}/{resource}/{refid}"+api, s.handleUpdate).Methods(http.MethodPut, http.MethodPost)
	s.router.HandleFunc("/{container}/{resource}/{refid}"+api, s.handleDelete).Methods(http.MethodDelete)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, constants.CodeResourceNotFound, "resource not found")
	})
	return s
}

// Start serves on a random local port.
func (s *Server) Start() {
	s.http = httptest.NewServer(s.router)
}

func (s *Server) Stop() {
	if s.http != nil {
		s.http.Close()
	}
}

// Address returns host:port of the running server, the value to use as the
// client domain.
func (s *Server) Address() string {
	if s.http == nil {
		return ""
	}
	return strings.TrimPrefix(s.http.URL, "http://")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddStub registers a stub. Stubs are matched in the order they were added.
func (s *Server) AddStub(stub Stub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, stub)
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Seed stores doc in container under resource and returns its refid. The
// refid of doc is used when set. Tree nodes name their parent with
// parent_refid.
func (s *Server) Seed(container, resource string, doc map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(container, resource, doc)
}

// SeedFile stores content under urlPath for file downloads.
func (s *Server) SeedFile(urlPath string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[urlPath] = content
}

// Document returns a copy of a stored resource.
func (s *Server) Document(container, resource, refid string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.lookup(container, resource, refid)
	if !ok {
		return nil, false
	}
	return copyMap(doc), true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		}

		body, multipart, formMethod, err := decodeBody(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, constants.CodeInvalidJSONFormat, err.Error())
			return
		}
		req.Body, req.Multipart, req.FormMethod = body, multipart, formMethod

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		next.ServeHTTP(w, r.WithContext(withBody(r.Context(), req)))
	})
}

func (s *Server) stub(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var matched *Stub
		for i := range s.stubs {
			if s.stubs[i].Method == r.Method && s.stubs[i].Path == r.URL.Path {
				matched = &s.stubs[i]
				break
			}
		}
		s.mu.Unlock()

		if matched == nil {
			next.ServeHTTP(w, r)
			return
		}
		if matched.Delay > 0 {
			select {
			case <-time.After(matched.Delay):
			case <-r.Context().Done():
				return
			}
		}
		status := matched.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write(matched.Body)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/files/") {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get(constants.HeaderAppID) != s.AppID || r.Header.Get(constants.HeaderAppKey) != s.AppKey {
			respondError(w, http.StatusUnauthorized, constants.CodeAuthFailed, "authentication failed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	content, ok := s.files[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	container, resource := vars["container"], vars["resource"]

	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "archive":
		for _, kind := range []struct{ resource, key string }{{"entry", "entries"}, {"record", "records"}} {
			if _, ok := s.collections[container+"/"+kind.resource]; ok {
				s.respondPage(w, r, container, kind.resource, kind.key)
				return
			}
		}
		s.respondPage(w, r, container, "record", "records")
	case "list":
		s.respondPage(w, r, container, "member", "members")
	case "categories", "groups":
		respondJSON(w, http.StatusOK, map[string]any{resource: s.tree(container, resource, "")})
	default:
		respondError(w, http.StatusNotFound, constants.CodeResourceNotFound, "resource not found")
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	container, resource, refid := vars["container"], vars["resource"], vars["refid"]

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lookup(container, resource, refid)
	if !ok {
		respondError(w, http.StatusNotFound, constants.CodeResourceNotFound, "resource not found")
		return
	}
	if isTree(resource) {
		node := s.render(container, resource, doc)
		node["children"] = s.tree(container, resource, refid)
		respondJSON(w, http.StatusOK, map[string]any{resource: []any{node}})
		return
	}
	respondJSON(w, http.StatusOK, s.render(container, resource, doc))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	container, resource := vars["container"], vars["resource"]
	req := bodyFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.storeFiles(container, resource, req.Body)
	delete(doc, "refid")
	refid := s.insert(container, resource, doc)
	stored, _ := s.lookup(container, resource, refid)
	respondJSON(w, http.StatusOK, s.render(container, resource, stored))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	container, resource, refid := vars["container"], vars["resource"], vars["refid"]
	req := bodyFrom(r.Context())
	if r.Method == http.MethodPost && req.FormMethod != http.MethodPut {
		respondError(w, http.StatusMethodNotAllowed, constants.CodeMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lookup(container, resource, refid)
	if !ok {
		respondError(w, http.StatusNotFound, constants.CodeResourceNotFound, "resource not found")
		return
	}
	for k, v := range s.storeFiles(container, resource+"/"+refid, req.Body) {
		switch k {
		case "refid", "created", "modified":
		default:
			doc[k] = v
		}
	}
	doc["modified"] = s.timestamp()
	respondJSON(w, http.StatusOK, s.render(container, resource, doc))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	container, resource, refid := vars["container"], vars["resource"], vars["refid"]

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.lookup(container, resource, refid)
	if !ok {
		respondError(w, http.StatusNotFound, constants.CodeResourceNotFound, "resource not found")
		return
	}
	res := s.render(container, resource, doc)

	c := s.collections[container+"/"+resource]
	delete(c.items, refid)
	for i, id := range c.order {
		if id == refid {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) respondPage(w http.ResponseWriter, r *http.Request, container, resource, key string) {
	q := r.URL.Query()
	page := intParam(q, "page", 1)
	limit := intParam(q, "limit", defaultLim)
	order := q.Get("order")
	if order == "" {
		order = "created"
	}
	asc := q.Get("asc") == "true"

	var ids []string
	if c, ok := s.collections[container+"/"+resource]; ok {
		ids = append(ids, c.order...)
	}
	if !asc {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}

	count := len(ids)
	pageCount := (count + limit - 1) / limit
	if pageCount == 0 {
		pageCount = 1
	}
	start := (page - 1) * limit
	end := start + limit
	if start > count {
		start = count
	}
	if end > count {
		end = count
	}

	items := make([]any, 0, end-start)
	for _, id := range ids[start:end] {
		items = append(items, s.render(container, resource, s.collections[container+"/"+resource].items[id]))
	}

	paginate := map[string]any{
		"page":      page,
		"pageCount": pageCount,
		"count":     count,
		"limit":     limit,
		"order":     order,
		"asc":       asc,
	}
	if page > 1 {
		paginate["prevPage"] = page - 1
	}
	if page < pageCount {
		paginate["nextPage"] = page + 1
	}
	respondJSON(w, http.StatusOK, map[string]any{key: items, "paginate": paginate})
}

// tree returns the nodes whose parent is parent, each with its own
// children.
func (s *Server) tree(container, resource, parent string) []any {
	out := []any{}
	c, ok := s.collections[container+"/"+resource]
	if !ok {
		return out
	}
	for _, id := range c.order {
		doc := c.items[id]
		if p, _ := doc["parent_refid"].(string); p != parent {
			continue
		}
		node := s.render(container, resource, doc)
		node["children"] = s.tree(container, resource, id)
		out = append(out, node)
	}
	return out
}

// render returns the response form of doc. Category and group refids are
// expanded to the objects they name.
func (s *Server) render(container, resource string, doc map[string]any) map[string]any {
	out := copyMap(doc)
	delete(out, "parent_refid")
	switch resource {
	case "entry", "record":
		if refs, ok := out["categories"].([]any); ok {
			out["categories"] = s.expand(container, "categories", refs)
		}
	case "member":
		if refs, ok := out["groups"].([]any); ok {
			out["groups"] = s.expand(container, "groups", refs)
		}
	}
	return out
}

func (s *Server) expand(container, resource string, refs []any) []any {
	out := make([]any, 0, len(refs))
	for _, ref := range refs {
		refid, ok := ref.(string)
		if !ok {
			out = append(out, ref)
			continue
		}
		if doc, ok := s.lookup(container, resource, refid); ok {
			node := copyMap(doc)
			delete(node, "parent_refid")
			out = append(out, node)
			continue
		}
		out = append(out, map[string]any{"refid": refid})
	}
	return out
}

// storeFiles moves uploaded file parts into the file store and replaces them
// with remote file references.
func (s *Server) storeFiles(container, owner string, body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = s.storeFile(container, owner, v)
	}
	return out
}

func (s *Server) storeFile(container, owner string, v any) any {
	switch v := v.(type) {
	case upload:
		urlPath := fmt.Sprintf("/files/%s/%s/%s", container, owner, v.name)
		s.files[urlPath] = v.content
		return map[string]any{"_type": "file", "name": v.name, "url_path": urlPath}
	case map[string]any:
		return s.storeFiles(container, owner, v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = s.storeFile(container, owner, e)
		}
		return out
	default:
		return v
	}
}

func (s *Server) insert(container, resource string, doc map[string]any) string {
	key := container + "/" + resource
	c, ok := s.collections[key]
	if !ok {
		c = &collection{items: map[string]map[string]any{}}
		s.collections[key] = c
	}

	doc = copyMap(doc)
	refid, _ := doc["refid"].(string)
	if refid == "" {
		s.lastID++
		refid = fmt.Sprintf("%s%d", strings.TrimSuffix(resource, "s"), s.lastID)
	}
	now := s.timestamp()
	doc["refid"] = refid
	if _, ok := doc["created"]; !ok {
		doc["created"] = now
	}
	if _, ok := doc["modified"]; !ok {
		doc["modified"] = now
	}

	if _, exists := c.items[refid]; !exists {
		c.order = append(c.order, refid)
	}
	c.items[refid] = doc
	return refid
}

func (s *Server) lookup(container, resource, refid string) (map[string]any, bool) {
	c, ok := s.collections[container+"/"+resource]
	if !ok {
		return nil, false
	}
	doc, ok := c.items[refid]
	return doc, ok
}

func (s *Server) timestamp() string {
	return s.Now().UTC().Format(constants.DateLayout)
}

func isTree(resource string) bool {
	return resource == "categories" || resource == "groups"
}

func intParam(q url.Values, key string, fallback int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, status, code int, message string) {
	respondJSON(w, status, map[string]any{
		"error_code":    code,
		"error_message": message,
	})
}

type bodyKey struct{}

func withBody(ctx context.Context, req Request) context.Context {
	return context.WithValue(ctx, bodyKey{}, req)
}

func bodyFrom(ctx context.Context) Request {
	req, _ := ctx.Value(bodyKey{}).(Request)
	return req
}

// upload is a file part of a multipart form.
type upload struct {
	name    string
	content []byte
}

var formKeyPattern = regexp.MustCompile(`\[([^\]]*)\]`)

// decodeBody reads a JSON or multipart body. Multipart fields named
// data[a][b] are nested into {"a": {"b": ...}}; maps keyed 0..n-1 become
// arrays.
func decodeBody(r *http.Request) (body map[string]any, multipart bool, formMethod string, err error) {
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodDelete {
		return nil, false, "", nil
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, true, "", err
		}
		body = map[string]any{}
		for name, values := range r.MultipartForm.Value {
			if name == "method" {
				formMethod = values[0]
				continue
			}
			setFormValue(body, name, values[0])
		}
		for name, headers := range r.MultipartForm.File {
			f, err := headers[0].Open()
			if err != nil {
				return nil, true, "", err
			}
			var buf bytes.Buffer
			_, err = buf.ReadFrom(f)
			f.Close()
			if err != nil {
				return nil, true, "", err
			}
			setFormValue(body, name, upload{name: headers[0].Filename, content: buf.Bytes()})
		}
		for k, v := range body {
			body[k] = arrays(v)
		}
		return body, true, formMethod, nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		return nil, false, "", err
	}
	if buf.Len() == 0 {
		return map[string]any{}, false, "", nil
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, false, "", err
	}
	return body, false, "", nil
}

func setFormValue(body map[string]any, name string, value any) {
	var keys []string
	for _, m := range formKeyPattern.FindAllStringSubmatch(name, -1) {
		keys = append(keys, m[1])
	}
	if !strings.HasPrefix(name, "data[") || len(keys) == 0 {
		return
	}

	cur := body
	for _, k := range keys[:len(keys)-1] {
		next, ok := cur[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[k] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
}

func arrays(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, e := range m {
		m[k] = arrays(e)
	}
	if len(m) == 0 {
		return m
	}
	list := make([]any, len(m))
	for k, e := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(m) {
			return m
		}
		list[i] = e
	}
	return list
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case map[string]any:
			out[k] = copyMap(v)
		case []any:
			out[k] = append([]any(nil), v...)
		default:
			out[k] = v
		}
	}
	return out
}
