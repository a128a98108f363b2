package signer

import "fmt"

// ConfigurationError reports missing or invalid signing credentials.
// It is raised at startup, never per request.
type ConfigurationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("signer configuration: %s: %s", e.Field, e.Message)
}

// SigningError reports an envelope that cannot be signed. Seeing one at
// runtime means the caller built the envelope incorrectly.
type SigningError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("signing failed: %s", e.Reason)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *SigningError) Unwrap() error {
	return e.Err
}
