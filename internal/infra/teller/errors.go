package teller

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels for errors.Is classification of executor failures.
var (
	ErrRequestFailed   = errors.New("request failed")
	ErrRequestTimedOut = errors.New("request timed out")
	ErrTransport       = errors.New("transport error")
)

// RequestFailedError is returned when the remote API answers with a non-2xx status.
type RequestFailedError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed with %d: %s", e.StatusCode, e.Body)
}

func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// RequestTimedOutError is returned when the configured timeout elapses before
// the response has been fully read and decoded.
type RequestTimedOutError struct {
	Path    string
	Timeout time.Duration
}

func (e *RequestTimedOutError) Error() string {
	return fmt.Sprintf("request timed out after %dms", e.Timeout.Milliseconds())
}

func (e *RequestTimedOutError) Is(target error) bool { return target == ErrRequestTimedOut }

// TransportError wraps every other failure below the HTTP status layer:
// DNS, connection resets, malformed JSON, caller cancellation.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("teller get %s: transport error", e.Path)
	}
	return fmt.Sprintf("teller get %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
