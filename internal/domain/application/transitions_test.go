package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/errs"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	for _, s := range []string{"DRAFT", "SUBMITTED", "UNDER_REVIEW", "APPROVED", "REJECTED", "WITHDRAWN", "approved"} {
		_, err := application.ParseStatus(s)
		assert.NoError(t, err, "ParseStatus(%q)", s)
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	_, err := application.ParseStatus("PENDING")
	assert.Error(t, err)
	_, err = application.ParseStatus("")
	assert.Error(t, err)
}

// ── IsTransitionAllowed ────────────────────────────────────────────────────

func TestIsTransitionAllowed_Forward(t *testing.T) {
	cases := []struct{ from, to application.Status }{
		{application.StatusDraft, application.StatusSubmitted},
		{application.StatusSubmitted, application.StatusUnderReview},
		{application.StatusSubmitted, application.StatusApproved},
		{application.StatusSubmitted, application.StatusRejected},
		{application.StatusUnderReview, application.StatusApproved},
		{application.StatusUnderReview, application.StatusRejected},
	}
	for _, c := range cases {
		assert.True(t, application.IsTransitionAllowed(c.from, c.to), "%s → %s", c.from, c.to)
	}
}

func TestIsTransitionAllowed_Withdraw(t *testing.T) {
	for _, from := range []application.Status{application.StatusDraft, application.StatusSubmitted, application.StatusUnderReview} {
		assert.True(t, application.IsTransitionAllowed(from, application.StatusWithdrawn), "%s → WITHDRAWN", from)
	}
	for _, from := range []application.Status{application.StatusApproved, application.StatusRejected, application.StatusWithdrawn} {
		assert.False(t, application.IsTransitionAllowed(from, application.StatusWithdrawn), "%s → WITHDRAWN", from)
	}
}

func TestIsTransitionAllowed_Rejected(t *testing.T) {
	cases := []struct{ from, to application.Status }{
		{application.StatusDraft, application.StatusApproved},
		{application.StatusDraft, application.StatusUnderReview},
		{application.StatusSubmitted, application.StatusSubmitted},
		{application.StatusSubmitted, application.StatusDraft},
		{application.StatusUnderReview, application.StatusSubmitted},
		{application.StatusApproved, application.StatusRejected},
		{application.StatusRejected, application.StatusApproved},
	}
	for _, c := range cases {
		assert.False(t, application.IsTransitionAllowed(c.from, c.to), "%s → %s", c.from, c.to)
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []application.Status{application.StatusApproved, application.StatusRejected, application.StatusWithdrawn} {
		assert.True(t, application.IsTerminal(s), "%s should be terminal", s)
	}
	for _, s := range []application.Status{application.StatusDraft, application.StatusSubmitted, application.StatusUnderReview} {
		assert.False(t, application.IsTerminal(s), "%s should not be terminal", s)
	}
}

func TestCheckTransition_WrapsKind(t *testing.T) {
	err := application.CheckTransition(application.StatusApproved, application.StatusWithdrawn)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	assert.NoError(t, application.CheckTransition(application.StatusDraft, application.StatusSubmitted))
}

func TestOccupiesSlot(t *testing.T) {
	for _, s := range application.SlotHoldingStatuses() {
		assert.True(t, application.OccupiesSlot(s))
	}
	assert.False(t, application.OccupiesSlot(application.StatusWithdrawn))
	assert.False(t, application.OccupiesSlot(application.StatusRejected))
}

func TestIsReviewDecision(t *testing.T) {
	assert.True(t, application.IsReviewDecision(application.StatusApproved))
	assert.True(t, application.IsReviewDecision(application.StatusUnderReview))
	assert.False(t, application.IsReviewDecision(application.StatusWithdrawn))
	assert.False(t, application.IsReviewDecision(application.StatusSubmitted))
}
