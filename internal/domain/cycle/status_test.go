package cycle_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_admin/internal/domain/cycle"
)

func TestExternalStatusOf_Table(t *testing.T) {
	cases := map[cycle.LifecycleState]cycle.ExternalStatus{
		cycle.StateDraft:          cycle.ExternalDraft,
		cycle.StateActive:         cycle.ExternalOpen,
		cycle.StateOpen:           cycle.ExternalOpen,
		cycle.StateClosed:         cycle.ExternalClosed,
		cycle.StateSuspended:      cycle.ExternalSuspended,
		cycle.StateInactive:       cycle.ExternalSuspended,
		cycle.StateReadyForLaunch: cycle.ExternalDraft,
		cycle.StateReviewing:      cycle.ExternalClosed,
		cycle.StateCompleted:      cycle.ExternalClosed,
		cycle.StateCancelled:      cycle.ExternalSuspended,
		"SOMETHING_ELSE":          cycle.ExternalDraft,
		"":                        cycle.ExternalDraft,
	}
	for in, want := range cases {
		assert.Equal(t, want, cycle.ExternalStatusOf(in), "ExternalStatusOf(%q)", in)
	}
}

func TestExternalStatusOf_AlwaysOneOfFourAndStable(t *testing.T) {
	allowed := map[cycle.ExternalStatus]bool{}
	for _, s := range cycle.ExternalStatuses() {
		allowed[s] = true
	}
	inputs := append(cycle.LifecycleStates(), "garbage", "open", "Active")
	for _, in := range inputs {
		first := cycle.ExternalStatusOf(in)
		assert.True(t, allowed[first], "unexpected external status %q for %q", first, in)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, cycle.ExternalStatusOf(in))
		}
	}
}

func TestLifecycleStateFor_Reverse(t *testing.T) {
	assert.Equal(t, cycle.StateOpen, cycle.LifecycleStateFor(cycle.ExternalOpen))
	assert.Equal(t, cycle.StateClosed, cycle.LifecycleStateFor(cycle.ExternalClosed))
	assert.Equal(t, cycle.StateSuspended, cycle.LifecycleStateFor(cycle.ExternalSuspended))
	assert.Equal(t, cycle.StateDraft, cycle.LifecycleStateFor(cycle.ExternalDraft))
	assert.Equal(t, cycle.StateDraft, cycle.LifecycleStateFor("ARCHIVED"))
}

func TestReverseThenForward_RoundTrips(t *testing.T) {
	for _, ext := range cycle.ExternalStatuses() {
		assert.Equal(t, ext, cycle.ExternalStatusOf(cycle.LifecycleStateFor(ext)))
	}
}

func TestParseLifecycleState(t *testing.T) {
	st, err := cycle.ParseLifecycleState(" reviewing ")
	require.NoError(t, err)
	assert.Equal(t, cycle.StateReviewing, st)

	_, err = cycle.ParseLifecycleState("ARCHIVED")
	assert.Error(t, err)
}

func TestParseExternalStatus(t *testing.T) {
	st, err := cycle.ParseExternalStatus("open")
	require.NoError(t, err)
	assert.Equal(t, cycle.ExternalOpen, st)

	_, err = cycle.ParseExternalStatus("ACTIVE")
	assert.Error(t, err, "persisted values are not part of the external vocabulary")
}

func TestResolveExternalStatus_DateOverrides(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	c := &cycle.Cycle{State: cycle.StateActive, ApplicationStartDate: start, ApplicationEndDate: end}

	assert.Equal(t, cycle.ExternalDraft, cycle.ResolveExternalStatus(c, start.Add(-time.Hour)))
	assert.Equal(t, cycle.ExternalOpen, cycle.ResolveExternalStatus(c, start))
	assert.Equal(t, cycle.ExternalOpen, cycle.ResolveExternalStatus(c, end.Add(-time.Second)))
	assert.Equal(t, cycle.ExternalClosed, cycle.ResolveExternalStatus(c, end))

	c.State = cycle.StateCancelled
	assert.Equal(t, cycle.ExternalSuspended, cycle.ResolveExternalStatus(c, start.Add(time.Hour)),
		"dates only override open cycles")
}

func TestCandidateStates_IncludeOpenForDateOverrides(t *testing.T) {
	closed := cycle.CandidateStates(cycle.ExternalClosed)
	assert.Contains(t, closed, cycle.StateReviewing)
	assert.Contains(t, closed, cycle.StateActive)

	suspended := cycle.CandidateStates(cycle.ExternalSuspended)
	assert.NotContains(t, suspended, cycle.StateActive)
	assert.ElementsMatch(t, []cycle.LifecycleState{cycle.StateInactive, cycle.StateCancelled, cycle.StateSuspended}, suspended)

	assert.Nil(t, cycle.CandidateStates(cycle.ExternalDraft), "draft also covers unrecognised states")
	assert.Equal(t, cycle.ExternalDraft, cycle.ResolveExternalStatus(&cycle.Cycle{State: "ARCHIVED_LEGACY"}, time.Now()))
}

func TestScholarshipTypeOf(t *testing.T) {
	c := &cycle.Cycle{}
	assert.Equal(t, "GENERAL", cycle.ScholarshipTypeOf(c, nil, "GENERAL"))

	legacy := []*cycle.Criterion{
		{Type: cycle.CriteriaGeneral, Value: "GPA >= 3.0"},
		{Type: cycle.CriteriaScholarshipType, Value: "MERIT_BASED"},
	}
	assert.Equal(t, "MERIT_BASED", cycle.ScholarshipTypeOf(c, legacy, "GENERAL"))

	c.ScholarshipType = sql.NullString{String: "NEED_BASED", Valid: true}
	assert.Equal(t, "NEED_BASED", cycle.ScholarshipTypeOf(c, legacy, "GENERAL"))
}
