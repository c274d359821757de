// Package errors provides domain-specific error types for luci-presence.
//
// This package defines structured errors with error codes, making it easier to
// handle and test the different failure modes of the LuCI RPC protocol
// consistently across the application.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeValidation indicates a configuration validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeAuth indicates the router rejected the login credentials
	// (HTTP 401, or an RPC response carrying neither a token nor an error).
	ErrCodeAuth ErrorCode = "AUTH_ERROR"

	// ErrCodeToken indicates the session token was rejected (HTTP 403).
	// The client recovers by refreshing the token on the next cycle.
	ErrCodeToken ErrorCode = "TOKEN_ERROR"

	// ErrCodeMethodNotFound indicates the requested RPC method is not
	// supported by the router firmware (JSON-RPC error -32601). The client
	// recovers by switching to the other device-listing method.
	ErrCodeMethodNotFound ErrorCode = "METHOD_NOT_FOUND"

	// ErrCodeRPC indicates any other malformed or unexpected RPC response.
	// Not auto-recovered.
	ErrCodeRPC ErrorCode = "RPC_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewAuthError creates a new authentication error.
func NewAuthError(message string, cause error) *Error {
	return Wrap(ErrCodeAuth, message, cause)
}

// NewTokenError creates a new invalid-token error.
func NewTokenError(message string, cause error) *Error {
	return Wrap(ErrCodeToken, message, cause)
}

// NewMethodNotFoundError creates a new method-not-found error.
func NewMethodNotFoundError(message string, cause error) *Error {
	return Wrap(ErrCodeMethodNotFound, message, cause)
}

// NewRPCError creates a new unknown-RPC error.
func NewRPCError(message string, cause error) *Error {
	return Wrap(ErrCodeRPC, message, cause)
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsAuth reports whether err is an authentication error.
func IsAuth(err error) bool {
	return HasCode(err, ErrCodeAuth)
}

// IsInvalidToken reports whether err is an invalid-token error.
func IsInvalidToken(err error) bool {
	return HasCode(err, ErrCodeToken)
}

// IsMethodNotFound reports whether err is a method-not-found error.
func IsMethodNotFound(err error) bool {
	return HasCode(err, ErrCodeMethodNotFound)
}
