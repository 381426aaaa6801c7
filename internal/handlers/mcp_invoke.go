package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"attribution/internal/mcp"
)

// MCPInvokeHandler serves JSON-RPC tool calls over SSE.
type MCPInvokeHandler struct {
	invoker *mcp.ToolInvoker
	timeout time.Duration
	logger  *slog.Logger
}

// NewMCPInvokeHandler creates the MCP handler over reporter.
func NewMCPInvokeHandler(reporter mcp.Reporter, defaultMinVisits int, timeout time.Duration, logger *slog.Logger) (*MCPInvokeHandler, error) {
	invoker, err := mcp.NewToolInvoker(mcp.NewToolExecutor(reporter, defaultMinVisits))
	if err != nil {
		return nil, err
	}

	return &MCPInvokeHandler{
		invoker: invoker,
		timeout: timeout,
		logger:  logger.With("component", "mcp"),
	}, nil
}

// ServeHTTP handles POST /mcp/sse.
func (h *MCPInvokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stream := mcp.NewEventStream(w)

	req, err := mcp.ParseJSONRPCRequest(r.Body)
	if err != nil {
		stream.Error(nil, mcp.FormatMCPError(err))
		return
	}

	switch req.Method {
	case mcp.MethodListTools:
		stream.Result(req.ID, h.invoker.ListTools())
		return
	case mcp.MethodCallTool:
	default:
		stream.Error(req.ID, &mcp.RPCError{
			Code:    mcp.MethodNotFound,
			Message: "unknown method, expected tools/call or tools/list",
			Data:    req.Method,
		})
		return
	}

	toolParams, err := mcp.ParseCallToolParams(req.Params)
	if err != nil {
		stream.Error(req.ID, mcp.FormatMCPError(err))
		return
	}

	advertiserID, _ := toolParams.Arguments["advertiser_id"].(string)
	call := mcp.NewCallLog(h.logger, toolParams.Name, advertiserID, GetCorrelationID(r.Context()))
	call.Received(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	done := make(chan struct{})
	var result *mcp.CallToolResult
	var invokeErr error

	go func() {
		result, invokeErr = h.invoker.InvokeTool(ctx, toolParams.Name, toolParams.Arguments)
		close(done)
	}()

	select {
	case <-done:
		if invokeErr != nil {
			rpcErr := mcp.FormatMCPError(invokeErr)
			call.Failed(ctx, rpcErr)
			stream.Error(req.ID, rpcErr)
			return
		}

		call.Succeeded(ctx)
		stream.Result(req.ID, result)

	case <-ctx.Done():
		rpcErr := &mcp.RPCError{
			Code:    mcp.TimeoutExceeded,
			Message: "request timeout",
			Data: map[string]interface{}{
				"timeout_ms": h.timeout.Milliseconds(),
				"elapsed_ms": call.Elapsed().Milliseconds(),
			},
		}
		call.Failed(ctx, rpcErr)
		stream.Error(req.ID, rpcErr)
	}
}
