package client

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// digestState tracks the challenge flow for one dispatched request.
// The flow is bounded: after one resend the second response is returned
// as-is, even if it is another 401.
type digestState int

const (
	digestUnauthenticated digestState = iota
	digestChallenged
	digestResent
)

// digestChallenge holds the parameters of a WWW-Authenticate: Digest header.
type digestChallenge struct {
	realm     string
	nonce     string
	opaque    string
	algorithm string
	qop       string
}

// parseDigestChallenge parses a WWW-Authenticate header value. Returns false
// if the header is absent or not a Digest challenge.
func parseDigestChallenge(header string) (*digestChallenge, bool) {
	const prefix = "digest "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return nil, false
	}

	ch := &digestChallenge{algorithm: "MD5"}
	for _, param := range splitChallengeParams(header[len(prefix):]) {
		key, value, found := strings.Cut(param, "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), `"`)
		switch key {
		case "realm":
			ch.realm = value
		case "nonce":
			ch.nonce = value
		case "opaque":
			ch.opaque = value
		case "algorithm":
			ch.algorithm = value
		case "qop":
			// The server may advertise a list; prefer plain "auth".
			for _, q := range strings.Split(value, ",") {
				if strings.TrimSpace(q) == "auth" {
					ch.qop = "auth"
					break
				}
			}
		}
	}

	if ch.nonce == "" {
		return nil, false
	}
	return ch, true
}

// splitChallengeParams splits comma-separated challenge parameters without
// breaking quoted values.
func splitChallengeParams(s string) []string {
	var params []string
	var sb strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			sb.WriteRune(r)
		case r == ',' && !inQuotes:
			params = append(params, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	if sb.Len() > 0 {
		params = append(params, sb.String())
	}
	return params
}

// digestHash returns the hash constructor for the advertised algorithm.
func digestHash(algorithm string) (func() hash.Hash, error) {
	switch strings.ToUpper(algorithm) {
	case "", "MD5":
		return md5.New, nil
	case "SHA-256":
		return sha256.New, nil
	default:
		return nil, fmt.Errorf("auth: unsupported digest algorithm %q", algorithm)
	}
}

// digestAuthorization computes the Authorization header for the resend.
// nc is the nonce count (1 for the single bounded retry); cnonce is supplied
// by the caller so the computation stays deterministic under test.
func (a *AuthConfig) digestAuthorization(ch *digestChallenge, method, uri, cnonce string, nc int) (string, error) {
	newHash, err := digestHash(ch.algorithm)
	if err != nil {
		return "", err
	}

	h := func(parts ...string) string {
		d := newHash()
		d.Write([]byte(strings.Join(parts, ":")))
		return hex.EncodeToString(d.Sum(nil))
	}

	ha1 := h(a.Username, ch.realm, a.Password)
	ha2 := h(method, uri)

	var response string
	var sb strings.Builder
	fmt.Fprintf(&sb, `Digest username=%q, realm=%q, nonce=%q, uri=%q`,
		a.Username, ch.realm, ch.nonce, uri)

	if ch.qop == "auth" {
		ncValue := fmt.Sprintf("%08x", nc)
		response = h(ha1, ch.nonce, ncValue, cnonce, ch.qop, ha2)
		fmt.Fprintf(&sb, `, qop=auth, nc=%s, cnonce=%q`, ncValue, cnonce)
	} else {
		response = h(ha1, ch.nonce, ha2)
	}

	fmt.Fprintf(&sb, `, response=%q, algorithm=%s`, response, ch.algorithm)
	if ch.opaque != "" {
		fmt.Fprintf(&sb, `, opaque=%q`, ch.opaque)
	}
	return sb.String(), nil
}

// newCnonce generates a random client nonce.
func newCnonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
