package client

import (
	"context"
	"net/http"

	"github.com/kbukum/hyperhttp/logger"
)

// Client is the public contract: it validates configuration, owns one
// pipeline for its lifetime, and dispatches the standard verbs through it.
// Header and auth mutation is not synchronized; use one Client per goroutine
// or lock externally.
type Client struct {
	config   Config
	headers  HeaderSet
	auth     *AuthConfig
	pipeline *Pipeline
}

// New creates a client from the given configuration. A nil config, a missing
// base_url, or inconsistent auth/transport settings fail with a configuration
// error.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, NewConfigError("config is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	headers := DefaultHeaders().Merge(NewHeaderSet(cfg.Headers))
	auth := cfg.Auth
	if hv := auth.headerValue(); hv != "" {
		headers.Set("Authorization", hv)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}
	p.setHeaders(headers)
	p.setAuth(auth)

	return &Client{
		config:   *cfg,
		headers:  headers,
		auth:     auth,
		pipeline: p,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, opts)
}

// Post performs a POST request. The body is serialized by the pipeline.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body, opts)
}

// Put performs a PUT request. The body is serialized by the pipeline.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body, opts)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, opts)
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodHead, path, nil, opts)
}

// Options performs an OPTIONS request.
func (c *Client) Options(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodOptions, path, nil, opts)
}

// do constructs the request and dispatches it through the pipeline.
func (c *Client) do(ctx context.Context, method, path string, body any, opts []RequestOption) (*Response, error) {
	req := Request{
		Method: method,
		Path:   path,
		Body:   body,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return c.pipeline.Execute(ctx, req)
}

// Headers returns a copy of the client's default headers.
func (c *Client) Headers() HeaderSet {
	return c.headers.Clone()
}

// SetHeaders replaces the full default header set and propagates it into the
// live pipeline. The active auth strategy's default header is re-applied so
// credentials survive the replacement.
func (c *Client) SetHeaders(headers map[string]string) {
	h := NewHeaderSet(headers)
	if hv := c.auth.headerValue(); hv != "" {
		h.Set("Authorization", hv)
	}
	c.headers = h
	c.pipeline.setHeaders(h)
}

// BasicAuth replaces the auth strategy with basic auth and immediately
// applies the precomputed credential to the connection's default headers.
func (c *Client) BasicAuth(username, password string) {
	c.setAuth(BasicAuth(username, password))
}

// DigestAuth replaces the auth strategy with digest auth. Credentials are
// negotiated per request against the server's challenge.
func (c *Client) DigestAuth(username, password string) {
	c.setAuth(DigestAuth(username, password))
}

// TokenAuth replaces the auth strategy with token auth. An empty scheme
// means Bearer.
func (c *Client) TokenAuth(scheme, token string) {
	c.setAuth(TokenAuth(scheme, token))
}

// setAuth swaps the strategy and re-derives the default Authorization header.
func (c *Client) setAuth(a *AuthConfig) {
	c.auth = a
	if hv := a.headerValue(); hv != "" {
		c.headers.Set("Authorization", hv)
	} else {
		c.headers.Del("Authorization")
	}
	c.pipeline.setAuth(a)
	c.pipeline.setHeaders(c.headers)
}

// AttachLogger inserts a logging step into the pipeline. Every subsequent
// request writes one line recording at least the method and the
// fully-qualified URL, synchronously after the request completes.
func (c *Client) AttachLogger(log *logger.Logger) {
	c.pipeline.attachLogger(log.WithComponent("hyperhttp"))
}

// TransportOptions exposes the resolved transport configuration,
// primarily for introspection and tests.
func (c *Client) TransportOptions() *TransportConfig {
	return c.config.Transport
}

// BuildStep exposes the resolved custom pipeline step, nil when the default
// JSON decoder is in place.
func (c *Client) BuildStep() BuildFunc {
	return c.config.Build
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.pipeline.httpClient
}
