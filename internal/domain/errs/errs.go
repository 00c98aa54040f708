// Package errs holds the error kinds surfaced by the lifecycle engine.
// Callers match them with errors.Is; adapters wrap them with context.
package errs

import "fmt"

var (
	ErrNotFound                   = fmt.Errorf("not found")
	ErrMissingRequiredField       = fmt.Errorf("missing required field")
	ErrInvalidTransition          = fmt.Errorf("invalid transition")
	ErrCapacityInvariantViolation = fmt.Errorf("capacity invariant violation")
	ErrDuplicateApplication       = fmt.Errorf("duplicate application")
	ErrConflictingResource        = fmt.Errorf("conflicting resource")
)

// ErrCapacityExhausted is returned when a cycle has no remaining slots
// for a new application.
var ErrCapacityExhausted = fmt.Errorf("cycle capacity exhausted")

// ErrInvalidInput covers malformed values that are present but unusable
// (bad dates, unknown status names, negative amounts).
var ErrInvalidInput = fmt.Errorf("invalid input")
