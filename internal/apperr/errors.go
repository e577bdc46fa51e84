// Package apperr defines the error taxonomy shared across Lectern.
//
// Callers match on the sentinels with errors.Is; ValidationError
// additionally carries the full list of violations found so responses
// can enumerate everything, not just the first failure.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a missing presentation, tab, group, or slide.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks duplicate ids/files and unsatisfiable reorders.
	ErrConflict = errors.New("conflict")
	// ErrValidation marks malformed input (id format, missing field, bad enum value).
	ErrValidation = errors.New("validation failed")
	// ErrCycle marks a parent-chain cycle in the group graph.
	ErrCycle = errors.New("cycle detected")
)

// Issue is a single validation finding, addressed by a JSON-ish path.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError aggregates every violation found in one pass.
// It unwraps to ErrValidation so errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Issues []Issue
}

// NewValidation builds a ValidationError from a single finding.
func NewValidation(path, format string, args ...any) *ValidationError {
	return &ValidationError{Issues: []Issue{{Path: path, Message: fmt.Sprintf(format, args...)}}}
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		parts[i] = iss.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add appends a finding and returns the receiver for chaining.
func (e *ValidationError) Add(path, format string, args ...any) *ValidationError {
	e.Issues = append(e.Issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
	return e
}

// OrNil returns nil when no issues were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// Conflict wraps ErrConflict with a formatted message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Cycle wraps ErrCycle with a formatted message.
func Cycle(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCycle, fmt.Sprintf(format, args...))
}
