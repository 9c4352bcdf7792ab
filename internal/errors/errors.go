// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrNoDataset indicates no course snapshot has been ingested yet.
	// It matches ErrNotFound under errors.Is so callers that only care
	// about "not found" semantics need a single check.
	ErrNoDataset error = &noDatasetError{}

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")
)

type noDatasetError struct{}

func (*noDatasetError) Error() string { return "no course dataset available" }

func (*noDatasetError) Is(target error) bool { return target == ErrNotFound }

// IsNotFound reports whether err is (or wraps) ErrNotFound, including ErrNoDataset.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNoDataset reports whether err is (or wraps) ErrNoDataset.
func IsNoDataset(err error) bool {
	return errors.Is(err, ErrNoDataset)
}

// IsInvalidInput reports whether err is an invalid input or validation error.
func IsInvalidInput(err error) bool {
	if errors.Is(err, ErrInvalidInput) {
		return true
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// SourceError represents a failure while reading a course snapshot source
// (local file, SQLite file or remote object).
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("snapshot source error (source=%s): %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new snapshot source error.
func NewSourceError(source string, err error) *SourceError {
	return &SourceError{
		Source: source,
		Err:    err,
	}
}
