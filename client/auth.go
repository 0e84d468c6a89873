package client

import (
	"encoding/base64"
	"fmt"
)

// AuthType identifies the authentication mechanism.
type AuthType string

const (
	// AuthNone disables authentication.
	AuthNone AuthType = ""
	// AuthBasic uses HTTP Basic authentication via a precomputed default header.
	AuthBasic AuthType = "basic"
	// AuthDigest uses HTTP Digest authentication, negotiated per request.
	AuthDigest AuthType = "digest"
	// AuthToken sends a token in the Authorization header (Bearer by default).
	AuthToken AuthType = "token"
)

// AuthConfig describes one authentication strategy. A client holds at most
// one strategy at a time; the mutators replace it wholesale.
type AuthConfig struct {
	// Type is the authentication mechanism.
	Type AuthType `yaml:"type" mapstructure:"type" validate:"omitempty,oneof=basic digest token"`
	// Username is the basic or digest username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the basic or digest password.
	Password string `yaml:"password" mapstructure:"password"`
	// Token is the credential value for token auth.
	Token string `yaml:"token" mapstructure:"token"`
	// Scheme is the Authorization scheme for token auth. Defaults to "Bearer".
	Scheme string `yaml:"scheme" mapstructure:"scheme"`
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// DigestAuth creates a digest auth config.
func DigestAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthDigest, Username: username, Password: password}
}

// TokenAuth creates a token auth config. An empty scheme means Bearer.
func TokenAuth(scheme, token string) *AuthConfig {
	if scheme == "" {
		scheme = "Bearer"
	}
	return &AuthConfig{Type: AuthToken, Scheme: scheme, Token: token}
}

// Validate checks that the strategy carries the credentials its type needs.
func (a *AuthConfig) Validate() error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthNone:
		return nil
	case AuthBasic, AuthDigest:
		if a.Username == "" {
			return fmt.Errorf("auth: %s auth requires a username", a.Type)
		}
		return nil
	case AuthToken:
		if a.Token == "" {
			return fmt.Errorf("auth: token auth requires a token")
		}
		return nil
	default:
		return fmt.Errorf("auth: unknown auth type %q", a.Type)
	}
}

// headerValue returns the default Authorization header this strategy
// contributes at connection time. Digest returns "" because it cannot be
// resolved before the server issues a challenge.
func (a *AuthConfig) headerValue() string {
	if a == nil {
		return ""
	}
	switch a.Type {
	case AuthBasic:
		cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		return "Basic " + cred
	case AuthToken:
		scheme := a.Scheme
		if scheme == "" {
			scheme = "Bearer"
		}
		return scheme + " " + a.Token
	default:
		return ""
	}
}
