// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrNotFound is returned by the local store for absent records.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks façade input errors. Import paths count these
	// per row instead of aborting the batch.
	ErrValidation = errors.New("invalid input")

	// Remote errors. Replay failures never surface to the caller of a
	// local write; the queue entry stays for the next pass.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrNotAuthenticated  = errors.New("no authenticated user")
	ErrOffline           = errors.New("offline")
)

// ValidationError wraps ErrValidation with a field-level message.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrRemoteUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
