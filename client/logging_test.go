package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/hyperhttp/logger"
)

func TestClient_RequestLogging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c, err := New(&Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	c.AttachLogger(logger.NewWithWriter(&buf, "test"))

	if _, err := c.Get(context.Background(), "/widgets"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not one JSON line: %v\n%s", err, buf.String())
	}
	if line[logger.FieldMethod] != "GET" {
		t.Errorf("method = %v", line[logger.FieldMethod])
	}
	if line[logger.FieldURL] != srv.URL+"/widgets" {
		t.Errorf("url = %v, want full URL", line[logger.FieldURL])
	}
	if line[logger.FieldStatus] != float64(200) {
		t.Errorf("status = %v", line[logger.FieldStatus])
	}
	if line[logger.FieldRequestID] == "" || line[logger.FieldRequestID] == nil {
		t.Error("request_id should be present")
	}
	if line["message"] != "request completed" {
		t.Errorf("message = %v", line["message"])
	}
}

func TestClient_NoLoggingByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c, err := New(&Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Get(context.Background(), "/"); err != nil {
		t.Fatalf("requests must work without an attached logger: %v", err)
	}
}

func TestClient_LogsDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{broken`))
	}))
	defer srv.Close()

	c, err := New(&Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	c.AttachLogger(logger.NewWithWriter(&buf, "test"))

	_, err = c.Get(context.Background(), "/")
	if !IsDecode(err) {
		t.Fatalf("expected decode error, got %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("a completed request logs even when decoding fails: %v\n%s", err, buf.String())
	}
	if line[logger.FieldStatus] != float64(200) {
		t.Errorf("logged status = %v", line[logger.FieldStatus])
	}
}

func TestClient_LogsDigestFlowOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.Header().Set("WWW-Authenticate", `Digest realm="r", nonce="n", qop="auth"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c, err := New(&Config{BaseURL: srv.URL, Auth: DigestAuth("u", "p")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	c.AttachLogger(logger.NewWithWriter(&buf, "test"))

	if _, err := c.Get(context.Background(), "/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a single log line for the whole dispatch: %v\n%s", err, buf.String())
	}
	if line[logger.FieldStatus] != float64(200) {
		t.Errorf("logged status = %v, want the final status", line[logger.FieldStatus])
	}
}
