/*
Package nearrpc contains the types used for JSON-RPC 2.0 communication with
NEAR nodes: the request/response envelope and the structured error taxonomy
the transport classifies server failures into.
*/
package nearrpc

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the only JSON-RPC protocol version supported.
const JSONRPCVersion = "2.0"

type (
	// Request represents a JSON-RPC request. NEAR methods take named
	// parameter objects rather than positional arrays.
	Request struct {
		// JSONRPC is the protocol version, always JSONRPCVersion.
		JSONRPC string `json:"jsonrpc"`
		// Method is the method being called.
		Method string `json:"method"`
		// Params is the method-specific parameter object.
		Params any `json:"params"`
		// ID identifies the request; the client uses fresh monotonic
		// numeric identifiers, one per attempt.
		ID uint64 `json:"id"`
	}

	// Response represents a standard raw JSON-RPC 2.0 response.
	Response struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Error   *Error          `json:"error,omitempty"`
		Result  json.RawMessage `json:"result,omitempty"`
	}

	// ErrorCause is the structured cause attached to NEAR error envelopes.
	// Name selects the failure class, Info carries class-specific details.
	ErrorCause struct {
		Name string          `json:"name"`
		Info json.RawMessage `json:"info,omitempty"`
	}

	// Error is the JSON-RPC error envelope, extended with NEAR's name/cause
	// fields. It is also the fallback error type for causes the
	// classification does not recognize.
	Error struct {
		Code    int64           `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
		Name    string          `json:"name,omitempty"`
		Cause   *ErrorCause     `json:"cause,omitempty"`
	}
)

// NewRequest builds a request envelope for the given method, parameters and
// identifier.
func NewRequest(id uint64, method string, params any) *Request {
	return &Request{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
		ID:      id,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("RPC error %d (%s/%s): %s", e.Code, e.Name, e.Cause.Name, e.Message)
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Is makes errors.Is match two envelopes by code and cause name.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Code != other.Code {
		return false
	}
	if e.Cause != nil && other.Cause != nil {
		return e.Cause.Name == other.Cause.Name
	}
	return e.Cause == nil && other.Cause == nil
}
