package client

import (
	"encoding/json"
	"mime"
	"strings"
)

// Decoder transforms a raw response body into its decoded form. The pipeline
// applies exactly one decoder to every response.
type Decoder interface {
	Decode(contentType string, body []byte) (any, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(contentType string, body []byte) (any, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(contentType string, body []byte) (any, error) {
	return f(contentType, body)
}

// JSONDecoder returns the default decoder: bodies with a JSON content type
// are parsed into a structured value (map, slice, or scalar); anything else
// passes through as the raw string. A JSON-typed body that fails to parse
// is a decode error, not a silent passthrough.
func JSONDecoder() Decoder {
	return DecoderFunc(func(contentType string, body []byte) (any, error) {
		if !isJSONContentType(contentType) || len(body) == 0 {
			return string(body), nil
		}
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, NewDecodeError(err)
		}
		return v, nil
	})
}

// RawDecoder returns a passthrough decoder: every body stays a raw string.
func RawDecoder() Decoder {
	return DecoderFunc(func(_ string, body []byte) (any, error) {
		return string(body), nil
	})
}

// isJSONContentType reports whether a Content-Type header indicates JSON,
// including structured-syntax suffixes like application/hal+json.
func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
