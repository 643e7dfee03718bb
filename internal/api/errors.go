package api

import "fmt"

// NetworkError indicates the request produced no usable response: connection
// failure, timeout, or an unreadable body. It never implies anything about
// the session's validity.
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError indicates the server rejected the credential. By the time a
// caller sees this error the session teardown callback has already run.
type AuthError struct {
	Status int
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (HTTP %d)", e.Status)
}

// APIError is any other non-success response, carrying the message the
// server reported. The message is suitable for direct display.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Message)
}
