package echo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/echopf/echo.go/pkg/connection"
	httpconn "github.com/echopf/echo.go/pkg/connection/http"
	"github.com/echopf/echo.go/pkg/constants"
	"github.com/echopf/echo.go/pkg/future"
	"github.com/echopf/echo.go/pkg/logger"
	"github.com/echopf/echo.go/pkg/models"
)

// Config identifies the app a Client talks to.
type Config struct {
	// Domain is the host serving the app, e.g. "myapp.echopf.com".
	Domain string `mapstructure:"domain"`
	// Scheme defaults to https.
	Scheme string `mapstructure:"scheme"`

	AppID  string `mapstructure:"app_id"`
	AppKey string `mapstructure:"app_key"`
	// AccessToken is sent as the member access token when set.
	AccessToken string `mapstructure:"access_token"`

	// Timeout bounds every HTTP request. Zero means no timeout beyond the
	// context passed to each call.
	Timeout time.Duration `mapstructure:"timeout"`

	HTTPClient *http.Client  `mapstructure:"-"`
	Logger     logger.Logger `mapstructure:"-"`
}

func (c Config) Validate() error {
	switch {
	case c.Domain == "":
		return constants.ErrNoDomain
	case c.AppID == "":
		return constants.ErrNoAppID
	case c.AppKey == "":
		return constants.ErrNoAppKey
	}
	return nil
}

func (c Config) connectionConfig() *connection.Config {
	p := connection.NewConfig(c.Domain, c.AppID, c.AppKey)
	if c.Scheme != "" {
		p.Scheme = c.Scheme
	}
	p.AccessToken = c.AccessToken
	p.HTTPClient = c.HTTPClient
	p.Timeout = c.Timeout
	return p
}

// Client is the entry point of the SDK. It is safe for concurrent use.
type Client struct {
	conn   connection.Transport
	logger logger.Logger
	closed atomic.Bool
}

// New validates cfg and returns a Client that talks to the ECHO REST API
// over HTTP.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, err := httpconn.New(cfg.connectionConfig())
	if err != nil {
		return nil, err
	}
	return NewWithTransport(conn, cfg.Logger), nil
}

// NewWithTransport returns a Client that sends every request through conn.
// A nil log discards all output.
func NewWithTransport(conn connection.Transport, log logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{conn: conn, logger: log}
}

// Close marks the client closed and releases the transport when it holds
// resources. Operations started afterwards fail with constants.ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if closer, ok := c.conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SetAccessToken replaces the member access token. An empty token stops
// sending one.
func (c *Client) SetAccessToken(token string) {
	c.conn.SetAccessToken(token)
}

func (c *Client) Transport() connection.Transport {
	return c.conn
}

func (c *Client) send(ctx context.Context, req *connection.Request) (map[string]any, error) {
	if c.closed.Load() {
		return nil, constants.ErrClientClosed
	}
	c.logger.Debug("sending request", "method", req.Method, "path", req.Path, "multipart", req.Multipart)

	res, err := c.conn.Send(ctx, req)
	if err != nil {
		c.logger.Error("request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return res, nil
}

// FileContent returns the bytes of f: the local bytes when it has not been
// uploaded yet, otherwise the content stored at its url path.
func (c *Client) FileContent(ctx context.Context, f *models.FileRef) ([]byte, error) {
	if f == nil {
		return nil, constants.ErrNoFileContent
	}
	if f.Local() {
		return f.Bytes, nil
	}
	if !f.Remote() {
		return nil, constants.ErrNoFileContent
	}
	if c.closed.Load() {
		return nil, constants.ErrClientClosed
	}

	c.logger.Debug("fetching file", "path", f.URLPath)

	body, err := c.conn.Raw(ctx, f.URLPath)
	if err != nil {
		c.logger.Error("file fetch failed", "path", f.URLPath, "error", err)
		return nil, fmt.Errorf("fetch file %s: %w", f.URLPath, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		c.logger.Error("file read failed", "path", f.URLPath, "error", err)
		return nil, &connection.TransportError{Op: http.MethodGet, URL: f.URLPath, Err: err}
	}
	return data, nil
}

func (c *Client) FileContentAsync(ctx context.Context, f *models.FileRef) *future.Future[[]byte] {
	return future.Go(func() ([]byte, error) {
		return c.FileContent(ctx, f)
	})
}
