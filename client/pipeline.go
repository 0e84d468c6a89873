package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/hyperhttp/logger"
)

// Middleware wraps the transport with additional behavior. Middleware runs
// between header/auth attachment and the network round trip.
type Middleware func(next http.RoundTripper) http.RoundTripper

// Builder configures a pipeline while it is being assembled. A custom Build
// step receives the builder and may register middleware and a decoder; when
// it registers no decoder, responses pass through undecoded.
type Builder struct {
	decoder    Decoder
	middleware []Middleware
}

// Use appends transport middleware to the pipeline.
func (b *Builder) Use(m Middleware) {
	b.middleware = append(b.middleware, m)
}

// SetDecoder registers the response decode step.
func (b *Builder) SetDecoder(d Decoder) {
	b.decoder = d
}

// BuildFunc is a custom pipeline step. It replaces the default JSON decoder
// registration entirely.
type BuildFunc func(*Builder)

// Pipeline assembles the transport from the base address, default headers,
// and the ordered processing steps: header/auth attachment, body encoding,
// the network round trip, response decoding, and logging when attached.
// Step order is fixed.
type Pipeline struct {
	base       *url.URL
	httpClient *http.Client
	headers    HeaderSet
	auth       *AuthConfig
	decoder    Decoder
	params     map[string]string
	log        *logger.Logger
}

// newPipeline builds a pipeline from validated configuration.
func newPipeline(cfg *Config) (*Pipeline, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, NewConfigError(fmt.Sprintf("invalid base_url: %v", err))
	}

	tc := cfg.Transport

	var rt http.RoundTripper
	if tc.RoundTripper != nil {
		rt = tc.RoundTripper
	} else {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if tc.TLS != nil {
			tlsCfg, err := tc.TLS.Build()
			if err != nil {
				return nil, NewConfigErrorWrap(err)
			}
			if tlsCfg != nil {
				transport.TLSClientConfig = tlsCfg
			}
		}
		if tc.Proxy != "" {
			proxyURL, err := url.Parse(tc.Proxy)
			if err != nil {
				return nil, NewConfigError(fmt.Sprintf("invalid proxy: %v", err))
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		if tc.MaxIdleConns > 0 {
			transport.MaxIdleConns = tc.MaxIdleConns
		}
		transport.DisableCompression = tc.DisableCompression
		rt = transport
	}

	// The decode step is the only configurable position besides the logger:
	// a custom Build replaces the default JSON decoder registration.
	b := &Builder{}
	if cfg.Build != nil {
		cfg.Build(b)
	} else {
		b.SetDecoder(JSONDecoder())
	}
	for i := len(b.middleware) - 1; i >= 0; i-- {
		rt = b.middleware[i](rt)
	}

	httpClient := &http.Client{
		Transport: rt,
		Timeout:   tc.Timeout,
	}
	if tc.Cookies {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, NewConfigErrorWrap(err)
		}
		httpClient.Jar = jar
	}

	return &Pipeline{
		base:       base,
		httpClient: httpClient,
		decoder:    b.decoder,
		params:     tc.Params,
	}, nil
}

// Execute is the single entry point: it constructs the outgoing request,
// invokes the chain, and returns a normalized response. Transport errors
// propagate unmodified; HTTP error statuses are ordinary responses.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()

	httpReq, err := p.buildRequest(ctx, req, "")
	if err != nil {
		return nil, err
	}
	requestID := httpReq.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
		httpReq.Header.Set("X-Request-Id", requestID)
	}

	resp, raw, err := p.roundTrip(httpReq)
	if err != nil {
		return nil, err
	}

	// Digest challenge flow: Unauthenticated -> ChallengeReceived -> Resent.
	// Bounded at exactly one resend; the second response is returned as-is.
	state := digestUnauthenticated
	if p.auth != nil && p.auth.Type == AuthDigest && resp.StatusCode == http.StatusUnauthorized {
		state = digestChallenged
	}
	for state == digestChallenged {
		state = digestResent
		authz, ok := p.challengeAuthorization(resp, req.Method, httpReq.URL)
		if !ok {
			break
		}
		retry, err := p.buildRequest(ctx, req, authz)
		if err != nil {
			return nil, err
		}
		retry.Header.Set("X-Request-Id", requestID)
		resp, raw, err = p.roundTrip(retry)
		if err != nil {
			return nil, err
		}
	}

	var body any = string(raw)
	var decodeErr error
	if p.decoder != nil {
		body, decodeErr = p.decoder.Decode(resp.Header.Get("Content-Type"), raw)
	}

	// The request completed on the wire, so the log line is written even when
	// decoding fails afterwards.
	if p.log != nil {
		p.logRequest(httpReq.Method, httpReq.URL.String(), requestID, resp.StatusCode, started)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: lowerHeaders(resp.Header),
		Body:    body,
		Raw:     raw,
	}, nil
}

// challengeAuthorization computes the Authorization header for a digest
// resend. Returns false when the challenge is absent, malformed, or uses an
// unsupported algorithm, in which case the original 401 stands.
func (p *Pipeline) challengeAuthorization(resp *http.Response, method string, u *url.URL) (string, bool) {
	ch, ok := parseDigestChallenge(resp.Header.Get("WWW-Authenticate"))
	if !ok {
		return "", false
	}
	authz, err := p.auth.digestAuthorization(ch, strings.ToUpper(method), u.RequestURI(), newCnonce(), 1)
	if err != nil {
		return "", false
	}
	return authz, true
}

// roundTrip sends the request and drains the body. The raw bytes are kept so
// the decode step and digest resend can both see the full payload.
func (p *Pipeline) roundTrip(req *http.Request) (*http.Response, []byte, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, raw, nil
}

// buildRequest constructs an *http.Request from the pipeline defaults and the
// request. authorization, when non-empty, carries the computed digest header
// for the bounded resend. Bodies supplied as io.Reader cannot be replayed on
// a digest resend; structured, string, and byte bodies re-encode, and
// multipart bodies replay their cached first encoding.
func (p *Pipeline) buildRequest(ctx context.Context, req Request, authorization string) (*http.Request, error) {
	target := req.Path
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = strings.TrimRight(p.base.String(), "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	// An unencodable body is a caller-input failure, not a configuration or
	// decode error, so it stays outside the classified taxonomy.
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("hyperhttp: encode body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(req.Method), target, body)
	if err != nil {
		return nil, NewConfigError(fmt.Sprintf("create request: %v", err))
	}

	if len(p.params) > 0 || len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range p.params {
			q.Set(k, v)
		}
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	// Defaults first, then request-specific overrides.
	p.headers.apply(httpReq)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if body != nil && contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}

	return httpReq, nil
}

// setHeaders replaces the pipeline's default headers.
func (p *Pipeline) setHeaders(h HeaderSet) {
	p.headers = h
}

// setAuth replaces the pipeline's auth strategy.
func (p *Pipeline) setAuth(a *AuthConfig) {
	p.auth = a
}

// attachLogger inserts the logging step. Writes happen synchronously after
// each request completes.
func (p *Pipeline) attachLogger(l *logger.Logger) {
	p.log = l
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case *MultipartBody:
		return v.encode()
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// lowerHeaders flattens multi-value headers to single values keyed by the
// lower-cased header name.
func lowerHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[strings.ToLower(k)] = v[0]
		}
	}
	return result
}
