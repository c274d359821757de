package luci

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/maxklyga/luci-presence/internal/errors"
	"github.com/maxklyga/luci-presence/internal/log"
)

// LuCI exposes one JSON-RPC endpoint per library namespace; only the last
// path segment differs.
const (
	authEndpoint = "/cgi-bin/luci/rpc/auth"
	sysEndpoint  = "/cgi-bin/luci/rpc/sys"
	ipEndpoint   = "/cgi-bin/luci/rpc/ip"
)

// rpcMethodNotFound is the JSON-RPC error code returned by routers whose
// firmware does not implement the requested method.
const rpcMethodNotFound = -32601

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// callRPC performs one JSON-RPC operation and classifies the response.
//
// The token is passed as the "auth" query parameter; the login call passes an
// empty token. The returned raw message is the non-null "result" field of the
// response envelope.
func (c *Client) callRPC(endpoint, method string, params []any, token string) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return nil, errors.NewRPCError(fmt.Sprintf("failed to encode %q request", method), err)
	}

	target := c.baseURL + endpoint
	if token != "" {
		target += "?auth=" + url.QueryEscape(token)
	}

	log.Debugf("LuCI RPC call: %s %s", method, c.baseURL+endpoint)

	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewRPCError(fmt.Sprintf("failed to build %q request", method), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewRPCError(fmt.Sprintf("request %q failed", method), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewRPCError("failed to read response body", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return classifyEnvelope(method, payload)
	case http.StatusUnauthorized:
		return nil, errors.NewAuthError("failed to authenticate with LuCI RPC, check your username and password", nil)
	case http.StatusForbidden:
		return nil, errors.NewTokenError("LuCI responded with a 403 invalid token", nil)
	default:
		return nil, errors.NewRPCError(
			fmt.Sprintf("invalid response from LuCI: status %d: %s", resp.StatusCode, trimForLog(payload)), nil)
	}
}

// classifyEnvelope inspects the {"result": ..., "error": ...} envelope of a
// 200 response. The distinction between an absent key and an explicit null
// matters here, so the envelope is probed with gjson before any typed decode.
func classifyEnvelope(method string, payload []byte) (json.RawMessage, error) {
	result := gjson.GetBytes(payload, "result")
	rpcErr := gjson.GetBytes(payload, "error")

	if !result.Exists() && !rpcErr.Exists() {
		return nil, errors.NewRPCError("no result in response from LuCI", nil)
	}

	if result.Exists() && result.Type != gjson.Null {
		return json.RawMessage(result.Raw), nil
	}

	if rpcErr.Exists() && rpcErr.Type != gjson.Null {
		code := rpcErr.Get("code").Int()
		message := rpcErr.Get("message").String()
		if code == rpcMethodNotFound {
			return nil, errors.NewMethodNotFoundError(
				fmt.Sprintf("method %q returned an error %q (code %d)", method, message, code), nil)
		}
		return nil, errors.NewRPCError(
			fmt.Sprintf("method %q returned an error %q (code %d)", method, message, code), nil)
	}

	// Null result without a usable error: LuCI answers this way to a login
	// with bad credentials.
	return nil, errors.NewAuthError("failed to authenticate with LuCI RPC, check your username and password", nil)
}

// unmarshalResult decodes an RPC result into dest.
func unmarshalResult(result json.RawMessage, dest any) error {
	return json.Unmarshal(result, dest)
}

// trimForLog bounds raw payloads included in diagnostics.
func trimForLog(payload []byte) string {
	const maxLen = 200
	s := strings.TrimSpace(string(payload))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
