package connection

import (
	"context"
	"io"
	"net/http"
)

// Transport sends requests to the ECHO REST API.
type Transport interface {
	// Send performs req and returns the decoded response object. A non-2xx
	// response is returned as *ServerError, a network failure as
	// *TransportError.
	Send(ctx context.Context, req *Request) (map[string]any, error)
	// Raw opens the content stored at urlPath, a path the server assigned to
	// a file.
	Raw(ctx context.Context, urlPath string) (io.ReadCloser, error)
	// SetAccessToken sets the member access token sent with every request.
	// An empty token stops sending one.
	SetAccessToken(token string)
}

// Request is one call against <container>/<resourceType>[/<refid>].
type Request struct {
	Method string
	Path   string
	// Params are sent as the query string of a GET request.
	Params map[string]any
	// Body is the deflated document sent with POST and PUT.
	Body map[string]any
	// Multipart sends Body as multipart form data, which is required when
	// it holds files with local bytes.
	Multipart bool
}

func Get(path string, params map[string]any) *Request {
	return &Request{Method: http.MethodGet, Path: path, Params: params}
}

func Post(path string, body map[string]any, multipart bool) *Request {
	return &Request{Method: http.MethodPost, Path: path, Body: body, Multipart: multipart}
}

func Put(path string, body map[string]any, multipart bool) *Request {
	return &Request{Method: http.MethodPut, Path: path, Body: body, Multipart: multipart}
}

func Delete(path string) *Request {
	return &Request{Method: http.MethodDelete, Path: path}
}
