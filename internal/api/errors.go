package api

import "fmt"

// NetworkError means the service could not be reached at all (DNS failure,
// refused connection, dropped socket). Callers can branch on this to tell
// "service unreachable" apart from "service rejected the request".
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return "cannot connect to the grocery service: " + e.Cause.Error()
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// HTTPError means the service answered with a non-success status.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// DecodeError means a response body matched none of the accepted shapes.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return "unexpected response shape: " + e.Cause.Error()
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// ValidationError reports client-side input rejection, raised before any
// request is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
