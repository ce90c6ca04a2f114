// Package errors provides the structured error type (VersionError) used
// across docvers for kind-based classification in the CLI exit path.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a VersionError for dispatch and exit-code mapping.
type Kind string

const (
	// Validation and registry errors
	KindInvalidVersionFormat Kind = "invalid_version_format"
	KindAlreadyExists        Kind = "already_exists"
	KindNotFound             Kind = "not_found"
	KindDuplicateID          Kind = "duplicate_id"
	KindInUse                Kind = "in_use"
	KindInvalidState         Kind = "invalid_state"

	// Content store errors
	KindSourceMissing     Kind = "source_missing"
	KindDestinationExists Kind = "destination_exists"

	// Build and serve errors
	KindBuildFailed      Kind = "build_failed"
	KindPortInUse        Kind = "port_in_use"
	KindInvalidSelection Kind = "invalid_selection"

	// Everything that does not map onto the taxonomy above
	KindInternal Kind = "internal"
)

// ContextFields carries structured context for a VersionError.
type ContextFields map[string]any

// VersionError is a structured error with a kind, message, and optional cause.
type VersionError struct {
	Kind    Kind          `json:"kind"`
	Message string        `json:"message"`
	Cause   error         `json:"cause,omitempty"`
	Context ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *VersionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *VersionError) Unwrap() error {
	return e.Cause
}

// Is reports kind equality so errors.Is works against a bare kinded error.
func (e *VersionError) Is(target error) bool {
	var ve *VersionError
	if errors.As(target, &ve) {
		return e.Kind == ve.Kind
	}
	return false
}

// WithContext adds a context field to the error.
func (e *VersionError) WithContext(key string, value any) *VersionError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new VersionError.
func New(kind Kind, format string, args ...any) *VersionError {
	return &VersionError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a VersionError that wraps an existing error.
func Wrap(err error, kind Kind, format string, args ...any) *VersionError {
	return &VersionError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// KindOf extracts the kind from an error, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ve *VersionError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return KindInternal
}

// IsKind checks whether an error (anywhere in its chain) has the given kind.
func IsKind(err error, kind Kind) bool {
	var ve *VersionError
	if errors.As(err, &ve) {
		return ve.Kind == kind
	}
	return false
}
