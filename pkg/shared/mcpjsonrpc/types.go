// Package mcpjsonrpc holds the JSON-RPC 2.0 envelope used by the admin
// invoke endpoint.
package mcpjsonrpc

import "encoding/json"

// Based on JSON-RPC 2.0 Specification: https://www.jsonrpc.org/specification

// Version is the only accepted value of the "jsonrpc" member.
const Version = "2.0"

// MethodInvokeTool dispatches a single tool call.
const MethodInvokeTool = "invokeTool"

// Request represents a JSON-RPC request object.
type Request struct {
	Version string          `json:"jsonrpc"`          // MUST be "2.0"
	Method  string          `json:"method"`           // Method to be invoked
	Params  json.RawMessage `json:"params,omitempty"` // Decoded per method
	ID      interface{}     `json:"id,omitempty"`     // Request identifier (string, number, or null)
}

// Response represents a JSON-RPC response object.
type Response struct {
	Version string      `json:"jsonrpc"`          // MUST be "2.0"
	Result  interface{} `json:"result,omitempty"` // Required on success
	Error   *Error      `json:"error,omitempty"`  // Required on error
	ID      interface{} `json:"id"`               // Must match request ID (or null if could not be determined)
}

// Error represents a JSON-RPC error object.
type Error struct {
	Code    int         `json:"code"`           // Error code
	Message string      `json:"message"`        // Error message
	Data    interface{} `json:"data,omitempty"` // Additional data about the error
}

// Error codes from the JSON-RPC specification.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// InvokeToolParams defines the structure for the "params" field
// when the method is "invokeTool". Arguments mirror the MCP tools/call shape.
type InvokeToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// InvokeToolResult is the "result" of an invokeTool call. A failed tool is
// still a successful JSON-RPC call: IsError is set and Text holds the fixed
// failure message.
type InvokeToolResult struct {
	Text    string `json:"text"`
	IsError bool   `json:"isError"`
}

// NewResult builds a success response.
func NewResult(id interface{}, result interface{}) Response {
	return Response{Version: Version, Result: result, ID: id}
}

// NewError builds an error response.
func NewError(id interface{}, code int, message string) Response {
	return Response{Version: Version, Error: &Error{Code: code, Message: message}, ID: id}
}
