package mcp

import "encoding/json"

// Tool is an MCP tool definition.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// TextContent is MCP text content.
type TextContent struct {
	Type string `json:"type"` // always "text"
	Text string `json:"text"`
}

// JSONRPCRequest is a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"` // string or number
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse is a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// Standard JSON-RPC error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// Application error codes
const (
	DataUnavailable  = -32002 // event source or config store failed
	ValidationFailed = -32003
	TimeoutExceeded  = -32004
)

// Supported methods; the short aliases are kept for older clients.
const (
	MethodCallTool  = "tools/call"
	MethodListTools = "tools/list"
)

var methodAliases = map[string]string{
	"call_tool":  MethodCallTool,
	"list_tools": MethodListTools,
}

// CallToolParams are the parameters of tools/call.
type CallToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// ListToolsResult is the result of tools/list.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolResult is the result of tools/call.
type CallToolResult struct {
	Content []TextContent `json:"content"`
}
