package client

import (
	"errors"
	"fmt"
)

// ErrorCode classifies errors produced by this layer.
type ErrorCode int

const (
	// ErrCodeConfig indicates invalid or missing construction configuration.
	ErrCodeConfig ErrorCode = iota
	// ErrCodeDecode indicates a response body that claims a JSON content type
	// but fails to parse.
	ErrCodeDecode
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeConfig:
		return "config"
	case ErrCodeDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a structured client error. Network-level failures are never wrapped
// in this type: they propagate from the transport unmodified.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hyperhttp: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration error.
func NewConfigError(msg string) *Error {
	return &Error{Code: ErrCodeConfig, Message: msg}
}

// NewConfigErrorWrap creates a configuration error wrapping an underlying cause.
func NewConfigErrorWrap(err error) *Error {
	return &Error{Code: ErrCodeConfig, Message: err.Error(), Err: err}
}

// NewDecodeError creates a decode error wrapping the parse failure.
func NewDecodeError(err error) *Error {
	return &Error{Code: ErrCodeDecode, Message: err.Error(), Err: err}
}

// IsConfig checks if an error is a configuration error.
func IsConfig(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeConfig
}

// IsDecode checks if an error is a decode error.
func IsDecode(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeDecode
}
