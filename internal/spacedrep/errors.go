package spacedrep

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below.
// Use errors.Is to classify: errors.Is(err, spacedrep.ErrValidation)
var (
	ErrValidation  = errors.New("spacedrep: invalid input")
	ErrRepository  = errors.New("spacedrep: repository failure")
	ErrComputation = errors.New("spacedrep: computation invariant violated")
)

// ValidationError indicates a caller-supplied value outside its contract.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field string, value any, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// RepositoryError wraps a failure of the mastery record read. The cause is
// kept unmodified and reachable through errors.Is and errors.As.
type RepositoryError struct {
	StudentID string
	CourseID  string
	Err       error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("read mastery records (student %q, course %q): %v", e.StudentID, e.CourseID, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

func (e *RepositoryError) Is(target error) bool { return target == ErrRepository }

// ComputationError reports a derived value that broke an internal invariant.
// It always indicates a defect.
type ComputationError struct {
	OutcomeID string
	Quantity  string
	Value     float64
}

func (e *ComputationError) Error() string {
	if e.OutcomeID == "" {
		return fmt.Sprintf("%s out of range: %v", e.Quantity, e.Value)
	}
	return fmt.Sprintf("outcome %q: %s out of range: %v", e.OutcomeID, e.Quantity, e.Value)
}

func (e *ComputationError) Is(target error) bool { return target == ErrComputation }
