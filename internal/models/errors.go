package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrConfigNotFound is returned by a config store when an advertiser has no routing entry.
var ErrConfigNotFound = errors.New("advertiser routing config not found")

// ValidationError reports a missing or malformed request parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// SourceUnavailableError reports a failed or timed-out read from an event source or config store.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was caused by the caller's deadline.
func (e *SourceUnavailableError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Unavailable wraps err as a SourceUnavailableError unless it already is one.
func Unavailable(source string, err error) error {
	var sue *SourceUnavailableError
	if errors.As(err, &sue) {
		return err
	}
	return &SourceUnavailableError{Source: source, Err: err}
}
