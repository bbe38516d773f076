package assignment

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("assignment not found")
	ErrIncidentNotFound    = errors.New("incident not found")
	ErrAlreadyAcknowledged = errors.New("assignment already acknowledged")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrConflict            = errors.New("version conflict")
	ErrValidation          = errors.New("validation failed")
)

// ValidationError reports a missing or malformed command field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidTransitionError names the attempted operation and the status it was attempted from.
type InvalidTransitionError struct {
	Op      Op
	Current Status
	Reason  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s assignment in status %s: %s", e.Op, e.Current, e.Reason)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ConflictError is returned when the stored version no longer matches the one the caller read.
// Actual is zero when the stored version is unknown (the conditional update matched nothing).
type ConflictError struct {
	AssignmentID string
	Expected     uint64
	Actual       uint64
}

func (e *ConflictError) Error() string {
	if e.Actual == 0 {
		return fmt.Sprintf("assignment %s: stale version %d", e.AssignmentID, e.Expected)
	}
	return fmt.Sprintf("assignment %s: version conflict (expected %d, stored %d)", e.AssignmentID, e.Expected, e.Actual)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
