package echo

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echopf/echo.go/internal/fakeecho"
	"github.com/echopf/echo.go/pkg/connection"
	"github.com/echopf/echo.go/pkg/models"
)

const (
	testAppID  = "app"
	testAppKey = "key"
)

// newTestClient starts a fake ECHO server and returns a client talking to
// it over HTTP.
func newTestClient(t *testing.T) (*Client, *fakeecho.Server) {
	t.Helper()

	server := fakeecho.NewServer(testAppID, testAppKey)
	server.Start()
	t.Cleanup(server.Stop)

	c, err := New(Config{
		Domain: server.Address(),
		Scheme: "http",
		AppID:  testAppID,
		AppKey: testAppKey,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, server
}

// scriptedTransport answers every request with respond and records what it
// was sent.
type scriptedTransport struct {
	mu       sync.Mutex
	respond  func(req *connection.Request) (map[string]any, error)
	requests []*connection.Request
}

func (s *scriptedTransport) Send(_ context.Context, req *connection.Request) (map[string]any, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.respond(req)
}

func (s *scriptedTransport) Raw(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("raw content is not scripted")
}

func (s *scriptedTransport) SetAccessToken(string) {}

func (s *scriptedTransport) last() *connection.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func newScriptedClient(respond func(req *connection.Request) (map[string]any, error)) (*Client, *scriptedTransport) {
	tr := &scriptedTransport{respond: respond}
	return NewWithTransport(tr, nil), tr
}

func reply(wire map[string]any) func(*connection.Request) (map[string]any, error) {
	return func(*connection.Request) (map[string]any, error) {
		return wire, nil
	}
}

func fileAt(t *testing.T, doc *models.Document, path string) *models.FileRef {
	t.Helper()
	v, ok, err := doc.Lookup(path)
	require.NoError(t, err)
	require.True(t, ok, "no value at %s", path)
	f, ok := v.(*models.FileRef)
	require.True(t, ok, "value at %s is %T", path, v)
	return f
}
