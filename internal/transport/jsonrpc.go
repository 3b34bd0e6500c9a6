package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error codes sent to dashboard clients. The -327xx/-326xx range is fixed by
// JSON-RPC 2.0; RPCDomainError marks a refused progression operation whose
// data names the domain code.
const (
	RPCParseError     = -32700
	RPCInvalidRequest = -32600
	RPCMethodNotFound = -32601
	RPCInvalidParams  = -32602
	RPCInternalError  = -32603
	RPCDomainError    = -32000
)

// maxRequestBytes bounds a dashboard call. Backup imports are the largest
// payloads and stay well under it.
const maxRequestBytes = 8 << 20

// Request is one dashboard call.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response is the answer to one dashboard call.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error is the error member of a Response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RequestError rejects a call before it reaches a method: the body was not
// JSON, or it was not a single well-formed call.
type RequestError struct {
	Code   int
	Reason string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *RequestError) Unwrap() error { return e.Err }

// Message is the short text sent as the error message.
func (e *RequestError) Message() string {
	if e.Code == RPCParseError {
		return "parse error"
	}
	return "invalid request"
}

// ParseRequest reads one dashboard call from body. Batches are refused; the
// dashboard never sends them.
func ParseRequest(body io.Reader) (Request, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxRequestBytes+1))
	if err != nil {
		return Request{}, &RequestError{Code: RPCParseError, Reason: "reading body", Err: err}
	}
	if len(data) > maxRequestBytes {
		return Request{}, &RequestError{Code: RPCInvalidRequest, Reason: fmt.Sprintf("body exceeds %d bytes", maxRequestBytes)}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return Request{}, &RequestError{Code: RPCInvalidRequest, Reason: "batch calls are not supported"}
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return Request{}, &RequestError{Code: RPCParseError, Reason: "body is not a JSON object", Err: err}
	}
	switch {
	case req.JSONRPC != "2.0":
		return Request{}, &RequestError{Code: RPCInvalidRequest, Reason: fmt.Sprintf("jsonrpc must be \"2.0\", got %q", req.JSONRPC)}
	case req.Method == "":
		return Request{}, &RequestError{Code: RPCInvalidRequest, Reason: "method is required"}
	}
	return req, nil
}

// WriteResult answers a call with its result.
func WriteResult(w http.ResponseWriter, id any, result any) {
	respond(w, Response{JSONRPC: "2.0", Result: result, ID: id})
}

// WriteError answers a call with an error. Transport-level failures still
// use status 200 so the dashboard reads one shape.
func WriteError(w http.ResponseWriter, id any, code int, message string, data any) {
	respond(w, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message, Data: data},
		ID:      id,
	})
}

func respond(w http.ResponseWriter, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}
