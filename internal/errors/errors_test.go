package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := New(ErrCodeAuth, "login rejected")
	want := "[AUTH_ERROR] login rejected"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewRPCError("request failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("Expected wrapped cause to be found by errors.Is")
	}
	want := "[RPC_ERROR] request failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NewTokenError("403", nil)
	if !stderrors.Is(err, New(ErrCodeToken, "")) {
		t.Error("Expected errors with the same code to match")
	}
	if stderrors.Is(err, New(ErrCodeAuth, "")) {
		t.Error("Expected errors with different codes not to match")
	}
}

func TestHelpers(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewMethodNotFoundError("neighbors", nil))

	if !IsMethodNotFound(wrapped) {
		t.Error("IsMethodNotFound should see through wrapping")
	}
	if IsAuth(wrapped) || IsInvalidToken(wrapped) {
		t.Error("Helpers must not match other codes")
	}
	if IsAuth(nil) {
		t.Error("IsAuth(nil) must be false")
	}
}
