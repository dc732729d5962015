package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while evaluating or replaying.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run, when there is one.
	RunID string

	// Seq is the logical clock value of the offending sample, or 0.
	Seq int64
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvalidSample indicates a sample with a non-finite field.
	// Such samples can be queried but not recorded.
	ErrCodeInvalidSample RuntimeErrorCode = "INVALID_SAMPLE"

	// ErrCodeNoStore indicates a recording operation on an evaluator
	// created without a store.
	ErrCodeNoStore RuntimeErrorCode = "NO_STORE"

	// ErrCodeRunNotFound indicates replay of a run the store does not have.
	ErrCodeRunNotFound RuntimeErrorCode = "RUN_NOT_FOUND"

	// ErrCodeConstraintMismatch indicates replay of a run recorded for a
	// different constraint.
	ErrCodeConstraintMismatch RuntimeErrorCode = "CONSTRAINT_MISMATCH"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.RunID != "" && e.Seq != 0 {
		return fmt.Sprintf("%s: %s (run=%s, seq=%d)", e.Code, e.Message, e.RunID, e.Seq)
	}
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err wraps a RuntimeError with the given code.
func HasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
