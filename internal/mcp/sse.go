package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// EventStream answers a tool request as a text/event-stream body. Each
// JSON-RPC response is one data frame, flushed as soon as it is written.
type EventStream struct {
	w http.ResponseWriter
}

// NewEventStream writes the stream headers. Call it before anything else
// touches w.
func NewEventStream(w http.ResponseWriter) *EventStream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	return &EventStream{w: w}
}

// Result writes a successful response for id.
func (s *EventStream) Result(id interface{}, result interface{}) error {
	return s.frame(JSONRPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

// Error writes an error response for id. id is nil when the request itself
// could not be parsed.
func (s *EventStream) Error(id interface{}, rpcErr *RPCError) error {
	return s.frame(JSONRPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: rpcErr})
}

func (s *EventStream) frame(resp JSONRPCResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	// the response controller unwraps middleware writers to find the flusher
	if err := http.NewResponseController(s.w).Flush(); err != nil {
		return fmt.Errorf("flush event: %w", err)
	}
	return nil
}
