package luci

import (
	"testing"

	"github.com/maxklyga/luci-presence/internal/errors"
)

func TestClassifyEnvelope_Result(t *testing.T) {
	result, err := classifyEnvelope("login", []byte(`{"result": "00112233445566778899aabbccddeeff", "error": null}`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(result) != `"00112233445566778899aabbccddeeff"` {
		t.Errorf("Unexpected result: %s", result)
	}
}

func TestClassifyEnvelope_EmptyArrayResult(t *testing.T) {
	// An empty array is still a successful result, not a failure.
	result, err := classifyEnvelope("neighbors", []byte(`{"result": [], "error": null}`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(result) != `[]` {
		t.Errorf("Unexpected result: %s", result)
	}
}

func TestClassifyEnvelope_MethodNotFound(t *testing.T) {
	_, err := classifyEnvelope("neighbors",
		[]byte(`{"result": null, "error": {"code": -32601, "message": "Method not found"}}`))
	if !errors.IsMethodNotFound(err) {
		t.Errorf("Expected METHOD_NOT_FOUND, got %v", err)
	}
}

func TestClassifyEnvelope_OtherRPCError(t *testing.T) {
	_, err := classifyEnvelope("neighbors",
		[]byte(`{"result": null, "error": {"code": -32602, "message": "Invalid params"}}`))
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !errors.HasCode(err, errors.ErrCodeRPC) {
		t.Errorf("Expected RPC_ERROR, got %v", err)
	}
}

func TestClassifyEnvelope_NullResultNoError(t *testing.T) {
	// LuCI answers a bad login with result: null and no usable error.
	_, err := classifyEnvelope("login", []byte(`{"result": null, "error": null}`))
	if !errors.IsAuth(err) {
		t.Errorf("Expected AUTH_ERROR, got %v", err)
	}
}

func TestClassifyEnvelope_NoResultKey(t *testing.T) {
	_, err := classifyEnvelope("login", []byte(`{"id": 1}`))
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !errors.HasCode(err, errors.ErrCodeRPC) {
		t.Errorf("Expected RPC_ERROR, got %v", err)
	}
}
