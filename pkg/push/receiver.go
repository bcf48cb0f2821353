// Package push receives push notifications delivered to a member's
// installation over a websocket stream.
//
// Each frame is a JSON object of the form
//
//	{"title": "...", "message": "...", "data": {...}}
//
// which is the same payload a PushNotification carries when it is
// distributed.
package push

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gorilla "github.com/gorilla/websocket"

	"github.com/echopf/echo.go/pkg/constants"
	"github.com/echopf/echo.go/pkg/logger"
)

// DefaultDialer is the gorilla dialer used by Receiver.
//
// It is gorilla's default dialer with compression enabled.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
}

// ErrReceiverClosed is returned by Listen once Close has been called.
var ErrReceiverClosed = errors.New("receiver is closed")

// Message is one delivered notification.
type Message struct {
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Handler is called for every message, in arrival order.
type Handler func(msg Message)

type Receiver struct {
	// URL is the websocket endpoint, e.g. "wss://myapp.echopf.com/push".
	URL string

	appID       string
	appKey      string
	deviceToken string

	logger logger.Logger

	connLock sync.Mutex
	conn     *gorilla.Conn
	closed   bool
}

// NewReceiver creates a Receiver for the installation identified by
// deviceToken.
func NewReceiver(url, appID, appKey, deviceToken string) *Receiver {
	return &Receiver{
		URL:         url,
		appID:       appID,
		appKey:      appKey,
		deviceToken: deviceToken,
		logger:      logger.Nop(),
	}
}

func (r *Receiver) SetLogger(l logger.Logger) *Receiver {
	if l != nil {
		r.logger = l
	}
	return r
}

func (r *Receiver) header() http.Header {
	h := http.Header{}
	h.Set(constants.HeaderAppID, r.appID)
	h.Set(constants.HeaderAppKey, r.appKey)
	h.Set(constants.HeaderDeviceToken, r.deviceToken)
	return h
}

func (r *Receiver) connect(ctx context.Context) (*gorilla.Conn, error) {
	conn, res, err := DefaultDialer.DialContext(ctx, r.URL, r.header())
	if err != nil {
		return nil, fmt.Errorf("push: dial %s: %w", r.URL, err)
	}
	defer res.Body.Close()

	r.connLock.Lock()
	defer r.connLock.Unlock()
	if r.closed {
		conn.Close()
		return nil, ErrReceiverClosed
	}
	r.conn = conn
	return conn, nil
}

// Listen connects and calls handler for each message until ctx is done,
// the server closes the stream or Close is called. A normal close by
// either side returns nil; a cancelled ctx returns ctx.Err().
func (r *Receiver) Listen(ctx context.Context, handler Handler) error {
	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		r.connLock.Lock()
		if r.conn == conn {
			r.conn = nil
		}
		r.connLock.Unlock()
		conn.Close()
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.closeConn(ctx)
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if r.isClosed() || gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("push: read: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			r.logger.Warn("dropping malformed push frame", "error", err)
			continue
		}
		handler(msg)
	}
}

func (r *Receiver) isClosed() bool {
	r.connLock.Lock()
	defer r.connLock.Unlock()
	return r.closed
}

// Close stops a running Listen. It is safe to call more than once.
func (r *Receiver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return r.closeConn(ctx)
}

func (r *Receiver) closeConn(ctx context.Context) error {
	r.connLock.Lock()
	defer r.connLock.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	conn := r.conn
	r.conn = nil
	if conn == nil {
		return nil
	}

	deadline, ok := ctx.Deadline()
	if !ok || ctx.Err() != nil {
		deadline = time.Now().Add(time.Second)
	}
	err := conn.WriteControl(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""), deadline)
	if err != nil && !errors.Is(err, gorilla.ErrCloseSent) {
		r.logger.Error("failed to write close message", "error", err)
	}

	return conn.Close()
}
