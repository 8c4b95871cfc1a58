package backend

import (
	"fmt"
	"net/http"
)

// NetworkError is returned when a request could not be sent or the backend
// answered with a non-success status.
type NetworkError struct {
	Op         string // "history", "chat" or "delete session"
	StatusCode int    // 0 when no response was received
	Message    string // error text reported by the backend, if any
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: backend returned %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: backend returned %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StreamError is returned when reading a streamed answer fails midway.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("reading stream: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
