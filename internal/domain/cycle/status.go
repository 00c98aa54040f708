// Package cycle models funding cycles and the two status vocabularies around them.
//
// A cycle persists a LifecycleState. Callers only ever see an ExternalStatus,
// derived from the persisted state and, for open cycles, from the application dates:
//
//	DRAFT, READY_FOR_LAUNCH                   ──► DRAFT
//	ACTIVE, OPEN                              ──► OPEN (DRAFT before start, CLOSED after end)
//	CLOSED, REVIEWING, COMPLETED              ──► CLOSED
//	SUSPENDED, INACTIVE, CANCELLED            ──► SUSPENDED
//
// Anything unrecognised maps to DRAFT.
package cycle

import (
	"fmt"
	"strings"
	"time"
)

// LifecycleState is the persisted cycle state.
type LifecycleState string

const (
	StateDraft          LifecycleState = "DRAFT"
	StateActive         LifecycleState = "ACTIVE"
	StateInactive       LifecycleState = "INACTIVE"
	StateReadyForLaunch LifecycleState = "READY_FOR_LAUNCH"
	StateReviewing      LifecycleState = "REVIEWING"
	StateCompleted      LifecycleState = "COMPLETED"
	StateCancelled      LifecycleState = "CANCELLED"

	// Written by explicit external status sets through LifecycleStateFor.
	StateOpen      LifecycleState = "OPEN"
	StateClosed    LifecycleState = "CLOSED"
	StateSuspended LifecycleState = "SUSPENDED"
)

// ExternalStatus is the four-value status exposed to API consumers.
type ExternalStatus string

const (
	ExternalDraft     ExternalStatus = "DRAFT"
	ExternalOpen      ExternalStatus = "OPEN"
	ExternalClosed    ExternalStatus = "CLOSED"
	ExternalSuspended ExternalStatus = "SUSPENDED"
)

// ExternalStatuses lists every external value in display order.
func ExternalStatuses() []ExternalStatus {
	return []ExternalStatus{ExternalDraft, ExternalOpen, ExternalClosed, ExternalSuspended}
}

// LifecycleStates lists every value a cycle may persist.
func LifecycleStates() []LifecycleState {
	return []LifecycleState{
		StateDraft, StateActive, StateInactive, StateReadyForLaunch, StateReviewing,
		StateCompleted, StateCancelled, StateOpen, StateClosed, StateSuspended,
	}
}

// ParseLifecycleState converts a raw string to a LifecycleState, returning an
// error for unknown values.
func ParseLifecycleState(s string) (LifecycleState, error) {
	st := LifecycleState(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range LifecycleStates() {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown cycle lifecycle state %q", s)
}

// ParseExternalStatus converts a raw string to an ExternalStatus, returning an
// error for unknown values.
func ParseExternalStatus(s string) (ExternalStatus, error) {
	st := ExternalStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case ExternalDraft, ExternalOpen, ExternalClosed, ExternalSuspended:
		return st, nil
	}
	return "", fmt.Errorf("unknown cycle status %q", s)
}

// ExternalStatusOf maps a persisted state to its external status. Total: unknown
// values yield DRAFT.
func ExternalStatusOf(state LifecycleState) ExternalStatus {
	switch state {
	case StateActive, StateOpen:
		return ExternalOpen
	case StateClosed, StateReviewing, StateCompleted:
		return ExternalClosed
	case StateSuspended, StateInactive, StateCancelled:
		return ExternalSuspended
	default:
		return ExternalDraft
	}
}

// LifecycleStateFor maps an external status supplied by a caller to the state
// that gets persisted. Total: unknown values yield DRAFT.
func LifecycleStateFor(status ExternalStatus) LifecycleState {
	switch status {
	case ExternalOpen:
		return StateOpen
	case ExternalClosed:
		return StateClosed
	case ExternalSuspended:
		return StateSuspended
	default:
		return StateDraft
	}
}

// StatesMappingTo returns every persisted state whose table mapping is status.
func StatesMappingTo(status ExternalStatus) []LifecycleState {
	var out []LifecycleState
	for _, st := range LifecycleStates() {
		if ExternalStatusOf(st) == status {
			out = append(out, st)
		}
	}
	return out
}

// ResolveExternalStatus is the status a caller sees at instant now. Only an open
// cycle is affected by its dates: before the start it reads DRAFT, from the end
// onwards it reads CLOSED.
func ResolveExternalStatus(c *Cycle, now time.Time) ExternalStatus {
	status := ExternalStatusOf(c.State)
	if status != ExternalOpen {
		return status
	}
	if !c.ApplicationStartDate.IsZero() && now.Before(c.ApplicationStartDate) {
		return ExternalDraft
	}
	if !c.ApplicationEndDate.IsZero() && !now.Before(c.ApplicationEndDate) {
		return ExternalClosed
	}
	return ExternalOpen
}

// CandidateStates returns the persisted states that can resolve to status once
// date overrides are applied. Used to narrow storage queries before mapping.
// DRAFT returns nil, meaning no narrowing: any unrecognised persisted state
// also resolves to DRAFT and cannot be enumerated.
func CandidateStates(status ExternalStatus) []LifecycleState {
	if status == ExternalDraft {
		return nil
	}
	states := StatesMappingTo(status)
	if status == ExternalClosed {
		states = append(states, StatesMappingTo(ExternalOpen)...)
	}
	return states
}

// ScholarshipTypeOf returns the displayed scholarship type: the cycle's own field,
// then a legacy SCHOLARSHIP_TYPE criterion, then fallback.
func ScholarshipTypeOf(c *Cycle, criteria []*Criterion, fallback string) string {
	if c.ScholarshipType.Valid && c.ScholarshipType.String != "" {
		return c.ScholarshipType.String
	}
	for _, cr := range criteria {
		if cr.Type == CriteriaScholarshipType && cr.Value != "" {
			return cr.Value
		}
	}
	return fallback
}
