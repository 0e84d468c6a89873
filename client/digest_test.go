package client

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestParseDigestChallenge(t *testing.T) {
	header := `Digest realm="testrealm@host.com", qop="auth,auth-int", nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", opaque="5ccc069c403ebaf9f0171e9517f40e41"`

	ch, ok := parseDigestChallenge(header)
	if !ok {
		t.Fatal("expected challenge to parse")
	}
	if ch.realm != "testrealm@host.com" {
		t.Errorf("realm = %q", ch.realm)
	}
	if ch.nonce != "dcd98b7102dd2f0e8b11d0f600bfb0c093" {
		t.Errorf("nonce = %q", ch.nonce)
	}
	if ch.opaque != "5ccc069c403ebaf9f0171e9517f40e41" {
		t.Errorf("opaque = %q", ch.opaque)
	}
	if ch.qop != "auth" {
		t.Errorf("qop = %q, want auth", ch.qop)
	}
	if ch.algorithm != "MD5" {
		t.Errorf("algorithm = %q, want MD5 default", ch.algorithm)
	}
}

func TestParseDigestChallenge_QuotedCommas(t *testing.T) {
	header := `Digest realm="a, b, c", nonce="n1"`
	ch, ok := parseDigestChallenge(header)
	if !ok {
		t.Fatal("expected challenge to parse")
	}
	if ch.realm != "a, b, c" {
		t.Errorf("realm = %q, want quoted value intact", ch.realm)
	}
}

func TestParseDigestChallenge_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"empty", ""},
		{"basic scheme", `Basic realm="x"`},
		{"missing nonce", `Digest realm="x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseDigestChallenge(tt.header); ok {
				t.Errorf("header %q should not parse", tt.header)
			}
		})
	}
}

// Vector from RFC 2617 section 3.5.
func TestDigestAuthorization_RFC2617Vector(t *testing.T) {
	auth := DigestAuth("Mufasa", "Circle Of Life")
	ch := &digestChallenge{
		realm:     "testrealm@host.com",
		nonce:     "dcd98b7102dd2f0e8b11d0f600bfb0c093",
		opaque:    "5ccc069c403ebaf9f0171e9517f40e41",
		algorithm: "MD5",
		qop:       "auth",
	}

	header, err := auth.digestAuthorization(ch, "GET", "/dir/index.html", "0a4f113b", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(header, `response="6629fae49393a05397450978507c4ef1"`) {
		t.Errorf("response digest does not match RFC vector:\n%s", header)
	}
	for _, want := range []string{
		`username="Mufasa"`,
		`realm="testrealm@host.com"`,
		`uri="/dir/index.html"`,
		`qop=auth`,
		`nc=00000001`,
		`cnonce="0a4f113b"`,
		`opaque="5ccc069c403ebaf9f0171e9517f40e41"`,
	} {
		if !strings.Contains(header, want) {
			t.Errorf("header missing %s:\n%s", want, header)
		}
	}
}

func TestDigestAuthorization_NoQop(t *testing.T) {
	auth := DigestAuth("user", "pass")
	ch := &digestChallenge{realm: "r", nonce: "n", algorithm: "MD5"}

	header, err := auth.digestAuthorization(ch, "GET", "/x", "ignored", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(header, "qop=") || strings.Contains(header, "cnonce=") {
		t.Errorf("no-qop header must omit qop and cnonce:\n%s", header)
	}

	ha1 := md5sum("user:r:pass")
	ha2 := md5sum("GET:/x")
	want := md5sum(ha1 + ":n:" + ha2)
	if !strings.Contains(header, fmt.Sprintf("response=%q", want)) {
		t.Errorf("response mismatch:\n%s", header)
	}
}

func TestDigestAuthorization_UnsupportedAlgorithm(t *testing.T) {
	auth := DigestAuth("user", "pass")
	ch := &digestChallenge{realm: "r", nonce: "n", algorithm: "MD4"}
	if _, err := auth.digestAuthorization(ch, "GET", "/", "c", 1); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

func TestDigestAuthorization_SHA256(t *testing.T) {
	auth := DigestAuth("user", "pass")
	ch := &digestChallenge{realm: "r", nonce: "n", algorithm: "SHA-256", qop: "auth"}
	header, err := auth.digestAuthorization(ch, "GET", "/", "cn", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(header, "algorithm=SHA-256") {
		t.Errorf("header should carry the negotiated algorithm:\n%s", header)
	}
}

// digestHandler implements the server side of the challenge flow for tests:
// a request without Authorization gets a 401 challenge; a request carrying a
// digest header is verified against the recomputed response.
func digestHandler(t *testing.T, realm, nonce, user, pass string, requests *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		authz := r.Header.Get("Authorization")
		if authz == "" {
			w.Header().Set("WWW-Authenticate",
				fmt.Sprintf(`Digest realm=%q, nonce=%q, qop="auth"`, realm, nonce))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		params := parseAuthorizationParams(authz)
		ha1 := md5sum(user + ":" + realm + ":" + pass)
		ha2 := md5sum(r.Method + ":" + params["uri"])
		want := md5sum(strings.Join([]string{ha1, nonce, params["nc"], params["cnonce"], "auth", ha2}, ":"))
		if params["response"] != want {
			t.Errorf("digest response mismatch: got %q want %q", params["response"], want)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok": true}`)
	}
}

func parseAuthorizationParams(header string) map[string]string {
	params := make(map[string]string)
	header = strings.TrimPrefix(header, "Digest ")
	for _, p := range splitChallengeParams(header) {
		key, value, found := strings.Cut(p, "=")
		if !found {
			continue
		}
		params[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return params
}

func md5sum(s string) string {
	d := md5.Sum([]byte(s))
	return hex.EncodeToString(d[:])
}

func TestClient_DigestChallengeFlow(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(digestHandler(t, "api@test", "abc123nonce", "user", "pass", &requests))
	defer srv.Close()

	c, err := New(&Config{
		BaseURL: srv.URL,
		Auth:    DigestAuth("user", "pass"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Post(context.Background(), "/resource", map[string]int{"foo": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != 200 {
		t.Fatalf("expected 200 after challenge, got %d", resp.Status)
	}
	if got := atomic.LoadInt32(&requests); got != 2 {
		t.Errorf("expected exactly 2 requests, got %d", got)
	}
	body, ok := resp.Body.(map[string]any)
	if !ok || body["ok"] != true {
		t.Errorf("body = %#v", resp.Body)
	}
}

func TestClient_DigestSecond401ReturnedAsIs(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Header().Set("WWW-Authenticate", `Digest realm="r", nonce="n", qop="auth"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(&Config{
		BaseURL: srv.URL,
		Auth:    DigestAuth("user", "wrong"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("the second 401 is an ordinary response, got error %v", err)
	}
	if resp.Status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.Status)
	}
	if got := atomic.LoadInt32(&requests); got != 2 {
		t.Errorf("resend must be bounded at one, got %d requests", got)
	}
}

func TestClient_Digest401WithoutChallengeNotResent(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(&Config{
		BaseURL: srv.URL,
		Auth:    DigestAuth("user", "pass"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.Status)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("no challenge header means no resend, got %d requests", got)
	}
}

func TestClient_NonDigest401NotResent(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Header().Set("WWW-Authenticate", `Digest realm="r", nonce="n"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(&Config{
		BaseURL: srv.URL,
		Auth:    BasicAuth("user", "pass"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.Status)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("only the digest strategy reacts to challenges, got %d requests", got)
	}
}
