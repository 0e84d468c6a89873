package client

import (
	"net/http"
	"time"

	"github.com/kbukum/hyperhttp/validation"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP client adapter.
type Config struct {
	// BaseURL is the base address resolved against all request paths. Required.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Auth configures the authentication strategy applied to all requests.
	// Nil disables authentication.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Headers are default headers merged over the standard defaults.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Transport holds options merged verbatim into transport construction.
	Transport *TransportConfig `yaml:"transport" mapstructure:"transport"`

	// Build customizes the pipeline in place of the default decode step.
	// When set, it fully replaces the default JSON decoder registration.
	Build BuildFunc `yaml:"-" mapstructure:"-"`
}

// TransportConfig carries options passed through to the underlying transport.
type TransportConfig struct {
	// Timeout is the whole-request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Proxy is the proxy URL. Empty uses the environment proxy settings.
	Proxy string `yaml:"proxy" mapstructure:"proxy" validate:"omitempty,url"`

	// Params are default query parameters appended to every request.
	Params map[string]string `yaml:"params" mapstructure:"params"`

	// Cookies enables an in-memory cookie jar scoped by the public suffix list.
	Cookies bool `yaml:"cookies" mapstructure:"cookies"`

	// MaxIdleConns caps idle connections held by the transport. 0 keeps the
	// net/http default.
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`

	// DisableCompression turns off transparent gzip on the transport.
	DisableCompression bool `yaml:"disable_compression" mapstructure:"disable_compression"`

	// TLS configures TLS settings for the transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// RoundTripper replaces the built transport entirely. Pipeline middleware
	// still wraps it.
	RoundTripper http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Transport == nil {
		c.Transport = &TransportConfig{}
	}
	if c.Transport.Timeout <= 0 {
		c.Transport.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is complete and consistent.
// All failures are configuration errors.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return NewConfigErrorWrap(err)
	}
	if c.Auth != nil {
		if err := c.Auth.Validate(); err != nil {
			return NewConfigErrorWrap(err)
		}
	}
	if c.Transport != nil && c.Transport.TLS != nil {
		if err := c.Transport.TLS.Validate(); err != nil {
			return NewConfigErrorWrap(err)
		}
	}
	return nil
}
