package mcp

import (
	"encoding/json"
	"io"
)

const jsonRPCVersion = "2.0"

func rpcError(code int, message string, data interface{}) *RPCError {
	return &RPCError{Code: code, Message: message, Data: data}
}

// ParseJSONRPCRequest reads one request envelope from r. Legacy method names
// come back as their tools/* form.
func ParseJSONRPCRequest(r io.Reader) (*JSONRPCRequest, error) {
	var req JSONRPCRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, rpcError(ParseError, "request body is not valid JSON", err.Error())
	}

	switch {
	case req.JSONRPC != jsonRPCVersion:
		return nil, rpcError(InvalidRequest, "jsonrpc must be \"2.0\"", req.JSONRPC)
	case req.Method == "":
		return nil, rpcError(InvalidRequest, "method is required", nil)
	}

	if canonical, ok := methodAliases[req.Method]; ok {
		req.Method = canonical
	}
	return &req, nil
}

// ParseCallToolParams decodes the params of a tools/call. Arguments are
// never nil on success so the schema validators always see an object.
func ParseCallToolParams(params json.RawMessage) (*CallToolParams, error) {
	if len(params) == 0 {
		return nil, rpcError(InvalidParams, "tools/call needs params with a tool name", nil)
	}

	var p CallToolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, rpcError(InvalidParams, "tools/call params could not be decoded", err.Error())
	}
	if p.Name == "" {
		return nil, rpcError(InvalidParams, "tools/call params.name is required", nil)
	}
	if p.Arguments == nil {
		p.Arguments = map[string]interface{}{}
	}
	return &p, nil
}
