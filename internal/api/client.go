// Package api is the request/response side of the translation server:
// the statistics snapshot and the start/translate commands.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/deevus/gtnh-translator-tui/internal/state"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/imroc/req/v3"
)

const (
	// DefaultTimeout bounds every request made by the client.
	DefaultTimeout = 10 * time.Second

	HeaderRequestID = "X-Request-ID"
	HeaderSessionID = "X-Client-Session"

	userAgent = "gtnh-translator-tui"

	pathStats            = "/api/stats"
	pathStartTranslation = "/api/start-translation"
	pathTranslate        = "/api/translate"
	pathHealth           = "/api/health"
)

// Options configures a Client.
type Options struct {
	BaseURL string

	// Timeout is applied to every call. Defaults to DefaultTimeout.
	Timeout time.Duration

	// DialContext replaces the TCP dialer, e.g. to go through an SSH tunnel.
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)

	// SessionID is sent with every request so server logs can be correlated.
	SessionID string

	Logger *slog.Logger
}

// Client talks to the translation server's HTTP API. It never retries.
type Client struct {
	c       *req.Client
	timeout time.Duration
	log     *slog.Logger
}

// New creates a Client for the server at opts.BaseURL.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	c := req.C().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetUserAgent(userAgent).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal).
		SetLogger(reqLogger{logger})
	if opts.SessionID != "" {
		c.SetCommonHeader(HeaderSessionID, opts.SessionID)
	}
	if opts.DialContext != nil {
		c.SetDial(opts.DialContext)
	}

	return &Client{c: c, timeout: timeout, log: logger}
}

// StartOptions is the optional body of a start request. The zero value sends
// no body and lets the server use its defaults.
type StartOptions struct {
	InputFile  string `json:"input_file,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

// IsZero reports whether no option is set.
func (o *StartOptions) IsZero() bool {
	return o == nil || *o == StartOptions{}
}

// TranslateResponse is the server's answer to a single translation.
type TranslateResponse struct {
	Original   string  `json:"original"`
	Translated *string `json:"translated"`
	Source     string  `json:"source"`
}

// Text returns the translated string.
func (r *TranslateResponse) Text() string {
	if r == nil || r.Translated == nil {
		return ""
	}
	return *r.Translated
}

type translateRequest struct {
	Text string `json:"text"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Stats fetches the aggregate statistics snapshot.
func (c *Client) Stats(ctx context.Context) (state.StatisticsSnapshot, error) {
	var out state.StatisticsSnapshot
	if err := c.do(ctx, "stats", http.MethodGet, pathStats, nil, &out); err != nil {
		return state.StatisticsSnapshot{}, err
	}
	return out, nil
}

// StartTranslation asks the server to start a full translation run.
func (c *Client) StartTranslation(ctx context.Context, opts *StartOptions) error {
	var body any
	if !opts.IsZero() {
		body = opts
	}
	return c.do(ctx, "start translation", http.MethodPost, pathStartTranslation, body, nil)
}

// Translate translates a single string.
func (c *Client) Translate(ctx context.Context, text string) (*TranslateResponse, error) {
	var out TranslateResponse
	if err := c.do(ctx, "translate", http.MethodPost, pathTranslate, translateRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	if out.Translated == nil {
		return nil, &DecodeError{Op: "translate", Err: fmt.Errorf("response has no translated field")}
	}
	return &out, nil
}

// Health returns the server's health status text.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out healthResponse
	if err := c.do(ctx, "health", http.MethodGet, pathHealth, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	r := c.c.R().
		SetContext(ctx).
		SetHeader(HeaderRequestID, requestID)
	if body != nil {
		r.SetBodyJsonMarshal(body)
	}

	start := time.Now()
	resp, err := r.Send(method, path)
	if err != nil {
		c.log.Debug("request failed", "op", op, "request_id", requestID, "error", err)
		return &RequestError{Op: op, Err: err}
	}
	raw := resp.Bytes()
	c.log.Debug("request done", "op", op, "request_id", requestID,
		"status", resp.StatusCode, "duration", time.Since(start))

	if !resp.IsSuccessState() {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: parseErrorBody(raw)}
	}
	if msg := embeddedError(raw); msg != "" {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

// embeddedError returns the "error" field of a successful response body.
func embeddedError(body []byte) string {
	var b errorBody
	if err := json.Unmarshal(body, &b); err != nil {
		return ""
	}
	return b.Error
}

// reqLogger routes req's internal logging to slog.
type reqLogger struct {
	l *slog.Logger
}

func (r reqLogger) Errorf(format string, v ...any) { r.l.Error(fmt.Sprintf(format, v...)) }
func (r reqLogger) Warnf(format string, v ...any)  { r.l.Warn(fmt.Sprintf(format, v...)) }
func (r reqLogger) Debugf(format string, v ...any) { r.l.Debug(fmt.Sprintf(format, v...)) }
