// Package dErrors provides coded domain errors. Services construct these at
// the boundary between infrastructure facts (pkg/platform/sentinel) and
// caller-visible failures, so handlers can map codes to HTTP statuses
// without string matching.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for programmatic handling.
type Code string

const (
	// CodeInvalidIdentifier marks a company identifier that failed checksum
	// validation. Never retried, never reaches the network.
	CodeInvalidIdentifier Code = "invalid_identifier"

	// CodeRegistryUnavailable marks a single registry call that failed
	// (timeout, non-2xx, malformed payload). Recovered locally by the
	// orchestrator; only surfaces when wrapped into CodeLookupFailed.
	CodeRegistryUnavailable Code = "registry_unavailable"

	// CodeLookupFailed marks the terminal failure: both registries
	// unavailable and no persisted record to fall back on.
	CodeLookupFailed Code = "lookup_failed"

	// CodeNotFound marks a missing persisted record on read paths.
	CodeNotFound Code = "not_found"

	// CodeConflict marks an operation that lost to an existing record.
	CodeConflict Code = "conflict"

	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error carries a code, a human-readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a domain error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Is/As chains.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries no code at all.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
