package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/buger/jsonparser"

	"github.com/echopf/echo.go/internal/codec"
	"github.com/echopf/echo.go/pkg/connection"
	"github.com/echopf/echo.go/pkg/constants"
)

const accessTokenKey = "access_token"

type Connection struct {
	BaseURL     string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler

	appID      string
	appKey     string
	httpClient *http.Client
	variables  sync.Map
}

// New validates p and returns a Connection for the app it names.
func New(p *connection.Config) (*Connection, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	con := Connection{
		BaseURL:     p.BaseURL(),
		Marshaler:   p.Marshaler,
		Unmarshaler: p.Unmarshaler,
		appID:       p.AppID,
		appKey:      p.AppKey,
		httpClient:  p.HTTPClient,
	}

	if con.httpClient == nil {
		con.httpClient = &http.Client{Timeout: p.Timeout}
	}
	if p.AccessToken != "" {
		con.SetAccessToken(p.AccessToken)
	}

	return &con, nil
}

func (c *Connection) SetHTTPClient(client *http.Client) *Connection {
	c.httpClient = client
	return c
}

// Close releases idle keep-alive connections held by the HTTP client.
func (c *Connection) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Connection) SetAccessToken(token string) {
	if token == "" {
		c.variables.Delete(accessTokenKey)
		return
	}
	c.variables.Store(accessTokenKey, token)
}

// URL returns the API endpoint for a request path:
// <base>/<path>/rest_api=1.0/
func (c *Connection) URL(path string) string {
	return fmt.Sprintf("%s/%s/%s/", c.BaseURL, strings.Trim(path, "/"), constants.APIVersion)
}

func (c *Connection) Send(ctx context.Context, r *connection.Request) (map[string]any, error) {
	if c.BaseURL == "" {
		return nil, constants.ErrNoDomain
	}

	endpoint := c.URL(r.Path)
	method := r.Method
	var (
		body        io.Reader = http.NoBody
		contentType           = "application/json"
	)

	switch {
	case method == http.MethodGet || method == http.MethodDelete:
		if len(r.Params) > 0 {
			query, err := encodeQuery(r.Params)
			if err != nil {
				return nil, err
			}
			endpoint += "?" + query
		}
	case r.Multipart:
		form, boundary, err := encodeMultipart(method, r.Body)
		if err != nil {
			return nil, err
		}
		body = form
		contentType = "multipart/form-data; boundary=" + boundary
		method = http.MethodPost
	case r.Body != nil:
		reqBody, err := c.Marshaler.Marshal(r.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(constants.HeaderAppID, c.appID)
	req.Header.Set(constants.HeaderAppKey, c.appKey)
	if token, ok := c.variables.Load(accessTokenKey); ok {
		req.Header.Set(constants.HeaderAccessToken, token.(string))
	}

	respData, err := c.MakeRequest(req)
	if err != nil {
		return nil, err
	}

	var res map[string]any
	if err := c.Unmarshaler.Unmarshal(respData, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrMalformedResponse, err)
	}
	if res == nil {
		return nil, constants.ErrMalformedResponse
	}
	return res, nil
}

func (c *Connection) Raw(ctx context.Context, urlPath string) (io.ReadCloser, error) {
	if c.BaseURL == "" {
		return nil, constants.ErrNoDomain
	}

	endpoint := c.BaseURL + "/" + strings.TrimPrefix(urlPath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &connection.TransportError{Op: req.Method, URL: endpoint, Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &connection.TransportError{Op: req.Method, URL: endpoint, Err: err}
	}
	return nil, parseError(resp.StatusCode, respBytes)
}

func (c *Connection) MakeRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &connection.TransportError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &connection.TransportError{Op: req.Method, URL: req.URL.String(), Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBytes, nil
	}

	return nil, parseError(resp.StatusCode, respBytes)
}

// parseError reads the error envelope
//
//	{"error_code": 110020, "error_message": "...", "error_details": {"field": {"error_code": ..., "error_message": ...}}}
func parseError(status int, body []byte) *connection.ServerError {
	if _, dataType, _, err := jsonparser.Get(body); err != nil || dataType != jsonparser.Object {
		if status == http.StatusNotFound {
			return &connection.ServerError{Status: status, Code: constants.CodeResourceNotFound, Message: "Resource not found."}
		}
		return &connection.ServerError{Status: status, Code: constants.CodeInvalidJSONFormat, Message: "Invalid JSON format."}
	}

	code, _ := jsonparser.GetInt(body, "error_code")
	message, _ := jsonparser.GetString(body, "error_message")
	if code == 0 && message == "" {
		return &connection.ServerError{Status: status, Message: http.StatusText(status)}
	}

	serr := &connection.ServerError{Status: status, Code: int(code), Message: message}

	details, dataType, _, err := jsonparser.Get(body, "error_details")
	if err != nil || dataType != jsonparser.Object {
		return serr
	}
	serr.Details = map[string]connection.FieldError{}
	_ = jsonparser.ObjectEach(details, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Object {
			return nil
		}
		fieldCode, _ := jsonparser.GetInt(value, "error_code")
		fieldMessage, _ := jsonparser.GetString(value, "error_message")
		serr.Details[string(key)] = connection.FieldError{Code: int(fieldCode), Message: fieldMessage}
		return nil
	})
	return serr
}

func encodeQuery(params map[string]any) (string, error) {
	values := url.Values{}
	for k, v := range params {
		s, err := queryValue(v)
		if err != nil {
			return "", fmt.Errorf("encoding query parameter %q: %w", k, err)
		}
		values.Set(k, s)
	}
	return values.Encode(), nil
}
