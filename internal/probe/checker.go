// Package probe performs the single HTTP reachability check against a
// deployed endpoint. Only the status code is looked at; the body is drained
// and discarded.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrEmptyURL is returned when there is no endpoint to check.
var ErrEmptyURL = errors.New("endpoint URL is empty")

// maxDrainBytes bounds how much of a response body is read before closing.
const maxDrainBytes = 64 << 10

// Prober checks an endpoint and returns the HTTP status code it answered with.
type Prober interface {
	Check(ctx context.Context, url string) (int, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds each request. Zero means no client-side timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		c.client.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header on the check request.
func WithUserAgent(userAgent string) Option {
	return func(c *Checker) {
		c.userAgent = userAgent
	}
}

// WithTransport replaces the underlying round tripper. It is still wrapped
// with OpenTelemetry instrumentation.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Checker) {
		c.client.Transport = otelhttp.NewTransport(rt)
	}
}

// Checker issues one unauthenticated GET per Check call.
type Checker struct {
	client    *http.Client
	userAgent string
}

// NewChecker creates a Checker using the default transport.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check issues a GET to url and returns the response status code. Redirects are
// followed by the client, so the code is the one of the final response. Any
// failure to obtain a response is returned as an error.
func (c *Checker) Check(ctx context.Context, url string) (int, error) {
	if url == "" {
		return 0, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused by the next invocation.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return resp.StatusCode, nil
}
