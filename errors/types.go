package errors

import (
	"net/http"
)

// NewError creates a GatewayError with full control over its fields.
// Prefer the specialized constructors below.
//
// Example:
//
//	err := NewError(InternalError, "encode failed", 500, "req_123", nil, encErr)
func NewError(errType ErrorType, message string, code int, requestID string, details map[string]interface{}, err error) *GatewayError {
	return &GatewayError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Details:   details,
		err:       err,
	}
}

// NewValidationError creates a 400 error for a missing or malformed field.
//
// Example:
//
//	err := NewValidationError("req_123", "Query is required.", map[string]interface{}{
//	    "field": "query",
//	})
func NewValidationError(requestID, message string, validationDetails map[string]interface{}) *GatewayError {
	return &GatewayError{
		Type:      ValidationError,
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
		Details:   validationDetails,
	}
}

// NewProviderError creates a 500 error for a failed completion call.
// The client sees the provider's own message.
func NewProviderError(requestID string, err error) *GatewayError {
	message := "completion provider failed"
	if err != nil {
		message = err.Error()
	}
	return &GatewayError{
		Type:      ProviderError,
		Message:   message,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewRateLimitError creates a 429 error. retryAfter is in seconds.
func NewRateLimitError(requestID string, retryAfter int) *GatewayError {
	return &GatewayError{
		Type:      RateLimitError,
		Message:   "Rate limit exceeded.",
		Code:      http.StatusTooManyRequests,
		RequestID: requestID,
		Details: map[string]interface{}{
			"retry_after": retryAfter,
		},
	}
}

// NewInternalError creates a 500 error for unexpected failures. The cause's
// message is reported to the client; pass nil (e.g. for panics) to report a
// generic message instead.
func NewInternalError(requestID string, err error) *GatewayError {
	message := "An internal error occurred."
	if err != nil {
		message = err.Error()
	}
	return &GatewayError{
		Type:      InternalError,
		Message:   message,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}
