package client

// Request describes one outbound HTTP request before it enters the pipeline.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, HEAD, OPTIONS).
	Method string
	// Path is resolved against the client's BaseURL. A full URL is used as-is.
	Path string
	// Headers are request-specific headers merged over the client defaults.
	Headers map[string]string
	// Query are URL query parameters merged over the transport defaults.
	Query map[string]string
	// Body is the request body. Accepts io.Reader, []byte, string,
	// *MultipartBody, or any value that will be JSON-encoded.
	Body any
}

// Response is the normalized result of a dispatched request.
type Response struct {
	// Status is the HTTP status code.
	Status int
	// Headers are the response headers with lower-cased keys.
	Headers map[string]string
	// Body is the decoded body: a structured value when the content type
	// indicates JSON, the raw string otherwise.
	Body any
	// Raw is the body exactly as received.
	Raw []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.Status >= 400
}

// RequestOption configures a single request.
type RequestOption func(*Request)

// WithHeader adds one header to the request.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithHeaders adds a set of headers to the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			r.Headers[k] = v
		}
	}
}

// WithQuery adds a query parameter to the request.
func WithQuery(key, value string) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(map[string]string)
		}
		r.Query[key] = value
	}
}
