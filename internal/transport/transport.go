// Package transport issues single HTTP round trips for the query client.
// It applies one timeout to the whole request, never retries, and reports every
// network-level failure as an errors.Transport error wrapping the cause.
// TLS certificate verification is always left on.
package transport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/logging"
	"xdrquery/cli/internal/metrics"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 10 * time.Second

// Request is a single outbound call.
type Request struct {
	Method string
	URL    string
	Body   []byte
	Header http.Header
}

// Response holds the fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Sender sends a request and returns the fully read response.
type Sender interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// Client implements Sender over net/http.
type Client struct {
	// http is the underlying client; its Timeout bounds connect, headers and body.
	http *http.Client
	log  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient replaces the underlying client, e.g. an httptest TLS client.
// Its Timeout is kept unless WithTimeout is applied afterwards.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a Client with a 10-second timeout.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: DefaultTimeout},
		log:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Sender = (*Client)(nil)

// Send performs the request. Non-2xx statuses are not errors at this layer.
func (c *Client) Send(ctx context.Context, r Request) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.Transport, "build request", err)
	}
	for k, vals := range r.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRequest(r.Method, 0, time.Since(start))
		c.log.Debug("request failed", "method", r.Method, "url", logging.Mask(r.URL), "error", logging.Mask(err.Error()))
		return nil, xerrors.Wrap(xerrors.Transport, r.Method+" "+logging.Mask(r.URL), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.ObserveRequest(r.Method, resp.StatusCode, elapsed)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.Transport, "read response body", err)
	}
	c.log.Debug("request complete",
		"method", r.Method,
		"url", logging.Mask(r.URL),
		"status", resp.StatusCode,
		"duration", elapsed.Round(time.Millisecond).String(),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       data,
	}, nil
}
