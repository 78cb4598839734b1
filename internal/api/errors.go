package api

import "fmt"

// APIError is a response the backend answered with an HTTP error status or
// a {"status":"error"} envelope.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Endpoint, e.Message, e.StatusCode)
}

// TransportError is a failure to reach the backend or decode its response.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrIncompatibleBackend is returned by CheckCompatible when the backend's
// major version differs from the client's.
type ErrIncompatibleBackend struct {
	Local  string
	Remote string
}

func (e *ErrIncompatibleBackend) Error() string {
	return fmt.Sprintf("backend version %s is not compatible with client %s", e.Remote, e.Local)
}
