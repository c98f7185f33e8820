package sim

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrUnavailable is returned when a service was never advertised before
	// the context ended.
	ErrUnavailable = errors.New("sim: service unavailable")

	// ErrNotConnected is returned when the simulator connection is gone.
	ErrNotConnected = errors.New("sim: not connected")

	// ErrParamNotFound is returned when a parameter is not set.
	ErrParamNotFound = errors.New("sim: parameter not found")

	// ErrUnsupportedURL is returned by Dial for unknown schemes.
	ErrUnsupportedURL = errors.New("sim: unsupported url scheme")
)

// CallError is a failed remote call. Err is either the simulator's own
// failure or the transport error that prevented a reply.
type CallError struct {
	Service string
	Err     error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return fmt.Sprintf("sim: call %s failed: %v", e.Service, e.Err)
}

// Unwrap returns the underlying error.
func (e *CallError) Unwrap() error {
	return e.Err
}

// wrapCall wraps err with service context.
func wrapCall(service string, err error) error {
	if err == nil {
		return nil
	}
	return &CallError{Service: service, Err: err}
}
