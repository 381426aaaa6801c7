package mcp

import (
	"errors"
	"fmt"

	"attribution/internal/models"
)

// FormatMCPError maps an error to a JSON-RPC error object.
func FormatMCPError(err error) *RPCError {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	var schemaErr *ValidationError
	if errors.As(err, &schemaErr) {
		return validationRPCError(schemaErr.Field, schemaErr.Message)
	}

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return validationRPCError(ve.Field, ve.Message)
	}

	var sue *models.SourceUnavailableError
	if errors.As(err, &sue) {
		if sue.Timeout() {
			return &RPCError{
				Code:    TimeoutExceeded,
				Message: "Request timeout",
				Data:    map[string]interface{}{"source": sue.Source},
			}
		}
		return &RPCError{
			Code:    DataUnavailable,
			Message: fmt.Sprintf("%s is temporarily unavailable", sue.Source),
			Data:    map[string]interface{}{"source": sue.Source, "suggestion": "retry in a few moments"},
		}
	}

	return &RPCError{
		Code:    InternalError,
		Message: fmt.Sprintf("Internal error: %s", err.Error()),
	}
}

func validationRPCError(field, message string) *RPCError {
	return &RPCError{
		Code:    ValidationFailed,
		Message: "Parameter validation failed",
		Data: map[string]interface{}{
			"field":   field,
			"message": message,
		},
	}
}
