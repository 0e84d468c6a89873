package client

import (
	"net/http"

	"github.com/kbukum/hyperhttp/version"
)

// HeaderSet maps canonical header names to single values. Keys are
// case-insensitive on write; merges are last-write-wins.
type HeaderSet map[string]string

// DefaultHeaders returns the headers every new client starts with.
func DefaultHeaders() HeaderSet {
	return HeaderSet{
		"Accept":     "application/json",
		"User-Agent": "hyperhttp/" + version.Version,
	}
}

// NewHeaderSet builds a HeaderSet from a plain map, canonicalizing keys.
// A nil map yields an empty, usable set.
func NewHeaderSet(m map[string]string) HeaderSet {
	h := make(HeaderSet, len(m))
	for k, v := range m {
		h[http.CanonicalHeaderKey(k)] = v
	}
	return h
}

// Set stores a value under the canonical form of key.
func (h HeaderSet) Set(key, value string) {
	h[http.CanonicalHeaderKey(key)] = value
}

// Get returns the value for key, or "" if absent.
func (h HeaderSet) Get(key string) string {
	return h[http.CanonicalHeaderKey(key)]
}

// Del removes key from the set.
func (h HeaderSet) Del(key string) {
	delete(h, http.CanonicalHeaderKey(key))
}

// Clone returns an independent copy of the set.
func (h HeaderSet) Clone() HeaderSet {
	out := make(HeaderSet, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Merge returns a copy of h with other's entries applied on top.
// Neither operand is mutated.
func (h HeaderSet) Merge(other HeaderSet) HeaderSet {
	out := h.Clone()
	for k, v := range other {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

// apply writes the set onto an outgoing request's headers.
func (h HeaderSet) apply(req *http.Request) {
	for k, v := range h {
		req.Header.Set(k, v)
	}
}
