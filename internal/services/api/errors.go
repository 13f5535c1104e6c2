package api

import (
	"errors"
	"fmt"
)

// ErrMalformedEnvelope is returned when a response body is not a JSON envelope.
var ErrMalformedEnvelope = errors.New("malformed response envelope")

// TransportError is a network failure or a non-2xx HTTP status.
// The request can be retried.
type TransportError struct {
	Err        error
	Path       string
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s failed with status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("request %s failed: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError is an envelope whose code is not 200.
// It is not retried automatically.
type ApplicationError struct {
	Message string
	Path    string
	Code    int
}

func (e *ApplicationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no message"
	}
	if e.Path == "" {
		return fmt.Sprintf("backend error %d: %s", e.Code, msg)
	}
	return fmt.Sprintf("backend error %d on %s: %s", e.Code, e.Path, msg)
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
