// Package errors provides the error handling system for the ChatIntel gateway.
// It includes typed gateway errors, the JSON error envelope written to
// clients, request ID propagation and integrated logging with zap.
//
// Every error response has the same wire shape:
//
//	{"error": "Query is required."}
//
// The request ID is not part of the body; it travels in the X-Request-ID
// response header set by the RequestID middleware.
//
// Basic usage:
//
//	// Type-specific error with the status code chosen by the caller
//	errors.ErrorWithType(w, "Not found.", errors.NotFoundError, http.StatusNotFound)
//
//	// Constructor with defaults, written later
//	err := errors.NewValidationError(requestID, "Query is required.", map[string]interface{}{
//	    "field": "query",
//	})
//	errors.WriteError(w, err)
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger is the zap logger used by package level helpers.
// It starts as a production logger and is replaced at startup via SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger allows setting a custom zap logger instance.
// A nil logger is ignored so logging cannot be disabled by accident.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType categorizes gateway failures. It is used for logging and
// metrics labels; clients only see the message.
type ErrorType string

const (
	// ValidationError represents missing or malformed request fields
	ValidationError ErrorType = "validation_error"

	// ProviderError represents failures of the completion provider
	ProviderError ErrorType = "provider_error"

	// InternalError represents unexpected internal server errors
	InternalError ErrorType = "internal_error"

	// RateLimitError represents rate limiting rejections
	RateLimitError ErrorType = "rate_limit_error"

	// NotFoundError represents unknown routes
	NotFoundError ErrorType = "not_found"

	// MethodNotAllowedError represents a known route called with the wrong method
	MethodNotAllowedError ErrorType = "method_not_allowed"
)

// GatewayError is the error type returned by gateway operations. It carries
// the HTTP status to answer with and keeps the underlying cause for logs.
type GatewayError struct {
	// Type categorizes the error
	Type ErrorType

	// Message is the client facing description
	Message string

	// Code is the HTTP status code
	Code int

	// RequestID links the error to a specific request
	RequestID string

	// Details holds extra context for logs; it is never sent to clients
	Details map[string]interface{}

	// err is the underlying error
	err error
}

// Error implements the error interface. It returns a string that
// combines the error type, message, and underlying error (if any).
func (e *GatewayError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *GatewayError) Unwrap() error {
	return e.err
}

// Is matches on Type only, so errors.Is(err, &GatewayError{Type: ValidationError})
// works regardless of message.
func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WriteError writes err as the JSON error envelope with its status code.
func WriteError(w http.ResponseWriter, err *GatewayError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Message}); encErr != nil {
		DefaultLogger.Warn("failed to write error response",
			zap.Error(encErr),
			zap.String("request_id", err.RequestID),
		)
	}
}

// ErrorWithType is a drop-in replacement for http.Error that writes the JSON
// envelope. The request ID is taken from the response headers when present.
func ErrorWithType(w http.ResponseWriter, message string, errType ErrorType, code int) {
	WriteError(w, &GatewayError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: w.Header().Get("X-Request-ID"),
	})
}
