package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ganot/entreate/internal/mcp"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
)

var (
	ErrParse          = errors.New("parse error")
	ErrInvalidRequest = errors.New("invalid request")
)

// Request is a JSON-RPC 2.0 call naming one of the journal tools.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response is a JSON-RPC 2.0 reply carrying either a tool result or an error.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error is a JSON-RPC 2.0 error object. Journal failures carry their
// *mcp.APIError as Data so clients see the same code as the REST routes.
type Error struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *mcp.APIError `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ParseRequest decodes a request. Malformed JSON yields ErrParse; a body
// without version 2.0 or a method yields ErrInvalidRequest.
func ParseRequest(body io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return Request{}, ErrInvalidRequest
	}
	return req, nil
}

// ErrorFor converts a parse or handler error into an RPC error. It reports
// false for errors without a journal code, whose details stay server side.
func ErrorFor(err error) (*Error, bool) {
	var apiErr *mcp.APIError
	switch {
	case errors.Is(err, ErrParse):
		return &Error{Code: CodeParseError, Message: "parse error"}, true
	case errors.Is(err, ErrInvalidRequest):
		return &Error{Code: CodeInvalidRequest, Message: "invalid request"}, true
	case errors.Is(err, mcp.ErrUnknownMethod):
		return &Error{Code: CodeMethodNotFound, Message: err.Error()}, true
	case errors.As(err, &apiErr) && apiErr.Code == mcp.CodeInvalidInput:
		return &Error{Code: CodeInvalidParams, Message: apiErr.Message, Data: apiErr}, true
	case errors.As(err, &apiErr):
		return &Error{Code: CodeInternal, Message: apiErr.Message, Data: apiErr}, true
	}
	return &Error{Code: CodeInternal, Message: "internal error"}, false
}

// WriteResult writes a success response.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeRPC(w, Response{JSONRPC: "2.0", Result: result, ID: id})
}

// WriteError writes an error response. JSON-RPC errors travel with status 200.
func WriteError(w http.ResponseWriter, id any, rpcErr *Error) {
	writeRPC(w, Response{JSONRPC: "2.0", Error: rpcErr, ID: id})
}

func writeRPC(w http.ResponseWriter, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}
