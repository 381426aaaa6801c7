package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"attribution/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sendError sends a JSON error response.
func sendError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	writeJSON(w, statusCode, models.ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// classify maps a service error to an HTTP status, error code and metrics label.
func classify(err error) (int, string, string) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "invalid_parameter", "invalid"
	}

	var sue *models.SourceUnavailableError
	if errors.As(err, &sue) {
		if sue.Timeout() {
			return http.StatusGatewayTimeout, "timeout", "timeout"
		}
		return http.StatusServiceUnavailable, "backend_unavailable", "unavailable"
	}

	return http.StatusInternalServerError, "internal_error", "error"
}

func errorMessage(err error) string {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
	}

	var sue *models.SourceUnavailableError
	if errors.As(err, &sue) {
		if sue.Timeout() {
			return "request timed out reading " + sue.Source
		}
		return sue.Source + " is temporarily unavailable"
	}

	return "internal error"
}
