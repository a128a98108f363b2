package client

import (
	"errors"
	"fmt"
)

// ErrEmptyOperation is returned when Call is invoked without an operation name.
var ErrEmptyOperation = errors.New("operation is required")

// UpstreamError represents a failed PA-API call: a non-2xx response,
// a transport failure or an undecodable body.
type UpstreamError struct {
	Operation  string
	StatusCode int
	ErrorClass ErrorClass

	// Code is the PA-API error code (e.g. "InvalidParameterValue") when the
	// response body carried one.
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("PA-API %s %s error (status %d): %s: %v",
			e.Operation, e.ErrorClass, e.StatusCode, msg, e.Err)
	}
	return fmt.Sprintf("PA-API %s %s error (status %d): %s",
		e.Operation, e.ErrorClass, e.StatusCode, msg)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsThrottled reports whether err is an upstream throttling response.
func IsThrottled(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr) && upErr.ErrorClass == ErrorClassThrottled
}

// apiErrorBody is the error document PA-API returns with non-2xx responses.
type apiErrorBody struct {
	Errors []struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Errors"`
}
