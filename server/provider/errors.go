package provider

import "errors"

var (
	// ErrProviderUnavailable is returned without calling the provider while
	// the circuit breaker is open or saturated in half-open state.
	ErrProviderUnavailable = errors.New("completion provider unavailable")
)
