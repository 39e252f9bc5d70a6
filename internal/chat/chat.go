// Package chat is the live support-thread chat client.
//
// The client keeps a WebSocket open to the API, reconnecting with
// exponential backoff after unexpected closes. A policy-violation close
// (1008) means the session token was rejected and ends Run with
// ErrSessionExpired.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	perrors "github.com/worksdev/portal/internal/errors"
	"github.com/worksdev/portal/internal/events"
	logger "github.com/worksdev/portal/internal/logging"
	"github.com/worksdev/portal/internal/validation"
)

// Status is the connection state.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 30 * time.Second

	chatPath       = "/threads/o/chat"
	protocolPrefix = "token-"
	writeTimeout   = 10 * time.Second
)

// Options configures a Client. Zero values use the defaults above.
type Options struct {
	URL   string
	Token string

	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	Dialer *websocket.Dialer
	Logger *logger.Logger
	Hub    *events.Hub

	OnEvent  func(Event)
	OnStatus func(Status)
}

// Client is a reconnecting chat connection.
type Client struct {
	opts Options

	mu     sync.Mutex
	conn   *websocket.Conn
	status Status

	writeMu sync.Mutex

	closed    chan struct{}
	closeOnce sync.Once
}

// URL returns the chat endpoint for an API base URL, switching http(s) to
// ws(s).
func URL(apiBase *url.URL) string {
	u := *apiBase
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + chatPath
	u.RawQuery = ""
	return u.String()
}

// Backoff returns the delay before reconnect attempt n (from zero):
// min(base*2^n, limit).
func Backoff(n int, base, limit time.Duration) time.Duration {
	delay := base
	for i := 0; i < n && delay < limit; i++ {
		delay *= 2
	}
	if delay > limit {
		return limit
	}
	return delay
}

// New returns a Client. Nothing is dialed until Run.
func New(opts Options) *Client {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	return &Client{
		opts:   opts,
		status: StatusDisconnected,
		closed: make(chan struct{}),
	}
}

// Status returns the current connection state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	c.mu.Unlock()

	if changed && c.opts.OnStatus != nil {
		c.opts.OnStatus(s)
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Run connects and delivers events until ctx is done, Close is called, the
// session expires or reconnect attempts run out. A clean stop returns nil.
func (c *Client) Run(ctx context.Context) error {
	attempts := 0

	for {
		if c.isClosed() {
			return nil
		}

		err := c.connectAndRead(ctx, &attempts)
		if c.isClosed() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == websocket.ClosePolicyViolation {
			c.setStatus(StatusDisconnected)
			return perrors.ErrSessionExpired
		}

		if attempts >= c.opts.MaxAttempts {
			c.setStatus(StatusError)
			return fmt.Errorf("%w after %d attempts: %v", perrors.ErrReconnectExhausted, attempts, err)
		}

		delay := Backoff(attempts, c.opts.BaseDelay, c.opts.MaxDelay)
		attempts++
		if c.opts.Logger != nil {
			c.opts.Logger.Infof("Chat connection lost (%v), reconnecting in %s (attempt %d/%d)", err, delay, attempts, c.opts.MaxAttempts)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-c.closed:
			timer.Stop()
			return nil
		}
	}
}

func (c *Client) connectAndRead(ctx context.Context, attempts *int) error {
	c.setStatus(StatusConnecting)

	dialer := *c.opts.Dialer
	dialer.Subprotocols = []string{protocolPrefix + c.opts.Token}

	conn, _, err := dialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		c.setStatus(StatusError)
		return err
	}

	c.setConn(conn)
	*attempts = 0
	c.setStatus(StatusConnected)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-c.closed:
			conn.Close()
		case <-done:
		}
	}()

	err = c.readLoop(conn)

	c.setConn(nil)
	conn.Close()
	c.setStatus(StatusDisconnected)
	return err
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		event, err := ParseEvent(data)
		if err != nil {
			if c.opts.Logger != nil {
				c.opts.Logger.Debugf("Ignoring chat frame: %v", err)
			}
			continue
		}
		if c.opts.OnEvent != nil {
			c.opts.OnEvent(event)
		}
	}
}

// Send validates and sends a message. The text is trimmed and must be
// 1 to 240 characters.
func (c *Client) Send(text string) error {
	values, errs := validation.Validate(validation.ChatMessageSchema, map[string]string{"content": text})
	if err := errs.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return perrors.ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(values["content"])); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close stops Run without reconnecting and publishes ChatClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn != nil {
			c.writeMu.Lock()
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			c.writeMu.Unlock()
			_ = conn.Close()
		}

		c.setStatus(StatusDisconnected)
		if c.opts.Hub != nil {
			c.opts.Hub.ChatClosed.Publish(events.ChatClosed{})
		}
	})
	return nil
}
