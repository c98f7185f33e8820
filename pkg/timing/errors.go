package timing

import "errors"

// Sentinel errors for common error conditions.
var (
	// ErrInterrupted is returned when the context ends mid-run. Callers
	// treat it as a clean, silent exit.
	ErrInterrupted = errors.New("timing: interrupted")

	// ErrNotStarted is returned by Run before ResetAndStart succeeded.
	ErrNotStarted = errors.New("timing: run not started")

	// ErrTooManyFailures is returned when SkipTick hits MaxConsecutiveFailures.
	ErrTooManyFailures = errors.New("timing: too many consecutive poll failures")
)
