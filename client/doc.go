// Package client provides a configurable HTTP client adapter with pluggable
// authentication (basic, digest, token), default JSON response decoding,
// optional request logging, and transport customization.
//
// The adapter wraps net/http: socket I/O, TLS negotiation, and connection
// pooling stay in the underlying transport. This layer validates configuration,
// assembles the request pipeline (auth, headers, body encoding, decoding,
// logging), and dispatches the standard verbs through it.
//
// # Basic Usage
//
//	c, err := client.New(&client.Config{
//	    BaseURL: "https://api.example.com",
//	    Auth:    client.BasicAuth("user", "pass"),
//	})
//
//	resp, err := c.Get(ctx, "/productions/1")
//	// resp.Status, resp.Headers, resp.Body (decoded JSON or raw string)
//
// # Customizing the pipeline
//
//	cfg := &client.Config{
//	    BaseURL: "https://api.example.com",
//	    Build: func(b *client.Builder) {
//	        b.Use(client.Tracing())
//	        b.SetDecoder(client.JSONDecoder())
//	    },
//	}
//
// HTTP error statuses (4xx/5xx) are returned as ordinary responses for the
// caller to inspect; only configuration and decode failures produce errors
// from this layer. Transport errors pass through unmodified.
package client
