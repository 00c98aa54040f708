// Package application models a student's application against a cycle.
//
// Valid status graph:
//
//	DRAFT ──► SUBMITTED ──► UNDER_REVIEW ──► APPROVED
//	  │           │  │            │      └──► REJECTED
//	  │           │  └────────────┼──────────► APPROVED / REJECTED
//	  └───────────┴───────────────┴──► WITHDRAWN
//
// APPROVED, REJECTED and WITHDRAWN are terminal states.
package application

import (
	"fmt"
	"strings"

	"scholarship_admin/internal/domain/errs"
)

// Status values mirror the application_status column.
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusWithdrawn   Status = "WITHDRAWN"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted, StatusWithdrawn},
	StatusSubmitted:   {StatusUnderReview, StatusApproved, StatusRejected, StatusWithdrawn},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusWithdrawn},
	// APPROVED, REJECTED and WITHDRAWN are terminal: no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition wraps IsTransitionAllowed into an errs.ErrInvalidTransition.
func CheckTransition(from, to Status) error {
	if !IsTransitionAllowed(from, to) {
		return fmt.Errorf("%w: application %s → %s is not allowed", errs.ErrInvalidTransition, from, to)
	}
	return nil
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Status) bool {
	_, ok := validTransitions[s]
	return !ok
}

// IsReviewDecision reports whether s may be passed as a review outcome.
func IsReviewDecision(s Status) bool {
	return s == StatusUnderReview || s == StatusApproved || s == StatusRejected
}

// OccupiesSlot reports whether an application in status s counts against the
// cycle's recipient cap and blocks a second application by the same applicant.
func OccupiesSlot(s Status) bool {
	return s != StatusWithdrawn && s != StatusRejected
}

// SlotHoldingStatuses lists the statuses for which OccupiesSlot is true.
func SlotHoldingStatuses() []Status {
	return []Status{StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved}
}
