package easydata

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error produced by this library
type ErrorType string

const (
	// ErrorTypeNoKey indicates an operation requiring an API key ran before one was set
	ErrorTypeNoKey ErrorType = "no_key"
	// ErrorTypeNetwork indicates a transport-level error (connection refused, DNS, timeout)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRemote indicates the service answered with a non-success HTTP status
	ErrorTypeRemote ErrorType = "remote"
	// ErrorTypeInvalidRange indicates a series request with a start date after its end date
	ErrorTypeInvalidRange ErrorType = "invalid_range"
	// ErrorTypeInvalidFormat indicates a series request with an unsupported payload format
	ErrorTypeInvalidFormat ErrorType = "invalid_format"
	// ErrorTypeMalformedPayload indicates a payload that could not be parsed into a table
	ErrorTypeMalformedPayload ErrorType = "malformed_payload"
	// ErrorTypeEmptyTable indicates a plot was requested for a table with zero rows
	ErrorTypeEmptyTable ErrorType = "empty_table"
)

// Error is the structured error returned by every failing operation in
// this module. Errors are always surfaced directly to the caller; nothing
// in the chain retries, recovers, or falls back silently.
type Error struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// NewNoKeyError creates a missing-key error
func NewNoKeyError() *Error {
	return &Error{
		Type:    ErrorTypeNoKey,
		Message: "no API key configured",
	}
}

// NewNetworkError creates a transport failure error
func NewNetworkError(cause error) *Error {
	return &Error{
		Type:    ErrorTypeNetwork,
		Message: "network request failed",
		Cause:   cause,
	}
}

// NewRemoteError creates an error for a non-success HTTP status
func NewRemoteError(statusCode int) *Error {
	return &Error{
		Type:       ErrorTypeRemote,
		StatusCode: statusCode,
		Message:    "remote service returned an error",
	}
}

// NewInvalidRangeError creates an error for a reversed date range
func NewInvalidRangeError(start, end time.Time) *Error {
	return &Error{
		Type:    ErrorTypeInvalidRange,
		Message: fmt.Sprintf("start date %s is after end date %s", start.Format(dateLayout), end.Format(dateLayout)),
	}
}

// NewInvalidFormatError creates an error for an unsupported payload format
func NewInvalidFormatError(format string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidFormat,
		Message: fmt.Sprintf("invalid format %q: supported formats are csv and json", format),
	}
}

// NewMalformedPayloadError creates a parse failure error. cause may be nil
// when the payload is structurally wrong rather than undecodable.
func NewMalformedPayloadError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeMalformedPayload,
		Message: message,
		Cause:   cause,
	}
}

// NewEmptyTableError creates an error for plotting a table with no rows
func NewEmptyTableError() *Error {
	return &Error{
		Type:    ErrorTypeEmptyTable,
		Message: "table has no rows",
	}
}
