// Package live maintains the push channel to the translation server and
// decodes its tagged events.
package live

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/deevus/gtnh-translator-tui/internal/state"
)

const (
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	pingPeriod            = 15 * time.Second
	pingTimeout           = 5 * time.Second
	maxMessageSize        = 4 * 1024 * 1024
)

// Options configures a Client.
type Options struct {
	// URL is the ws:// or wss:// endpoint of the push channel.
	URL string

	// HTTPClient is used for the handshake. Nil means http.DefaultClient.
	HTTPClient *http.Client
	Header     http.Header

	// Reconnect redials after the connection drops. When false, Run returns
	// once the first connection ends.
	Reconnect bool

	// RetryBaseDelay is the base delay for reconnect backoff.
	// Defaults to 1s; tests can set to a small value.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// OnState is called on every connection state transition.
	OnState func(state.ConnState)

	Logger *slog.Logger
}

// Client is a receive-only push channel client.
type Client struct {
	opts Options
	log  *slog.Logger
}

// New creates a Client. No connection is made until Run.
func New(opts Options) *Client {
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = defaultRetryBaseDelay
	}
	if opts.RetryMaxDelay <= 0 {
		opts.RetryMaxDelay = defaultRetryMaxDelay
	}
	if opts.RetryMaxDelay < opts.RetryBaseDelay {
		opts.RetryMaxDelay = opts.RetryBaseDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{opts: opts, log: logger.With("component", "live")}
}

// URL returns the endpoint the client dials.
func (c *Client) URL() string {
	return c.opts.URL
}

// Run connects and forwards decoded events to events until ctx is done, or,
// with reconnect disabled, until the connection ends. It closes events and
// the websocket before returning. Cancellation is not reported as an error.
func (c *Client) Run(ctx context.Context, events chan<- Event) error {
	defer close(events)
	defer c.setState(state.ConnDisconnected)

	for attempt := 0; ; attempt++ {
		c.setState(state.ConnConnecting)
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !c.opts.Reconnect {
				return err
			}
			c.log.Warn("push channel connect failed", "error", err, "attempt", attempt+1)
			c.setState(state.ConnDisconnected)
			if !c.retryBackoff(ctx, attempt) {
				return nil
			}
			continue
		}

		c.setState(state.ConnConnected)
		c.log.Info("push channel connected", "url", c.opts.URL)
		attempt = 0

		err = c.consume(ctx, conn, events)
		if ctx.Err() != nil {
			return nil
		}
		if !c.opts.Reconnect {
			return err
		}
		if err != nil {
			c.log.Warn("push channel lost, reconnecting", "error", err)
		} else {
			c.log.Info("push channel closed by server, reconnecting")
		}
		c.setState(state.ConnDisconnected)
		if !c.retryBackoff(ctx, attempt) {
			return nil
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, c.opts.URL, &websocket.DialOptions{
		HTTPClient: c.opts.HTTPClient,
		HTTPHeader: c.opts.Header,
	})
	if err != nil {
		return nil, &TransportError{Op: "dial", URL: c.opts.URL, Err: err}
	}
	conn.SetReadLimit(maxMessageSize)
	return conn, nil
}

// consume reads until the connection ends. A nil return means the peer
// closed normally or ctx was cancelled.
func (c *Client) consume(ctx context.Context, conn *websocket.Conn, events chan<- Event) error {
	defer conn.Close(websocket.StatusNormalClosure, "client closing")

	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go c.keepAlive(pingCtx, conn)

	for {
		_, raw, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || isExpectedCloseError(err) {
				return nil
			}
			return &TransportError{Op: "read", URL: c.opts.URL, Err: err}
		}

		ev, err := Decode(raw)
		if err != nil {
			c.log.Warn("dropping push message", "error", err, "size", len(raw))
			continue
		}
		if ev == nil {
			c.log.Debug("ignoring push message of unknown type")
			continue
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Client) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				c.log.Debug("push channel ping failed", "error", err)
				return
			}
		}
	}
}

// retryBackoff sleeps with jittered exponential backoff, returning false if ctx is cancelled.
func (c *Client) retryBackoff(ctx context.Context, attempt int) bool {
	delay := c.opts.RetryBaseDelay * time.Duration(1<<min(attempt, 5)) // base*1, base*2, ... base*32
	delay = min(delay, c.opts.RetryMaxDelay)
	delay = time.Duration(float64(delay) * (0.75 + rand.Float64()*0.5))

	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

func (c *Client) setState(s state.ConnState) {
	if c.opts.OnState != nil {
		c.opts.OnState(s)
	}
}

// isExpectedCloseError reports whether err is an orderly end of the connection.
func isExpectedCloseError(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, net.ErrClosed)
}
