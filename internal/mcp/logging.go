package mcp

import (
	"context"
	"log/slog"
	"time"
)

// CallLog carries the attributes shared by every log line of one tool call.
type CallLog struct {
	logger *slog.Logger
	start  time.Time
}

// NewCallLog binds the tool, advertiser and correlation id to logger and
// starts the latency clock.
func NewCallLog(logger *slog.Logger, tool, advertiserID, correlationID string) *CallLog {
	return &CallLog{
		logger: logger.With(
			"tool_name", tool,
			"advertiser_id", advertiserID,
			"correlation_id", correlationID,
		),
		start: time.Now(),
	}
}

func (l *CallLog) Received(ctx context.Context) {
	l.logger.InfoContext(ctx, "mcp_request")
}

func (l *CallLog) Succeeded(ctx context.Context) {
	l.logger.InfoContext(ctx, "mcp_success", "latency_ms", l.Elapsed().Milliseconds())
}

func (l *CallLog) Failed(ctx context.Context, rpcErr *RPCError) {
	l.logger.ErrorContext(ctx, "mcp_error",
		"error_code", rpcErr.Code,
		"error_message", rpcErr.Message,
		"latency_ms", l.Elapsed().Milliseconds(),
	)
}

// Elapsed is the time since the call was received.
func (l *CallLog) Elapsed() time.Duration {
	return time.Since(l.start)
}
