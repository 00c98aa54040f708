package memory

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_admin/internal/app"
	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/cycle"
	"scholarship_admin/internal/domain/errs"
)

func quietEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func seedCycle(t *testing.T, s *Store) *cycle.Cycle {
	t.Helper()
	ctx := context.Background()
	sp := &cycle.Sponsor{Name: "Acme", Type: cycle.SponsorOrganization}
	require.NoError(t, s.Cycles().CreateSponsor(ctx, sp))
	p := &cycle.Program{SponsorID: sp.ID, Name: "Merit"}
	require.NoError(t, s.Cycles().CreateProgram(ctx, p))
	c := &cycle.Cycle{
		ProgramID:            p.ID,
		AcademicYear:         "2026-2027",
		State:                cycle.StateActive,
		ApplicationStartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ApplicationEndDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	cycle.InitSlots(c, 3)
	require.NoError(t, s.Cycles().CreateCycle(ctx, c))
	return c
}

// rowCounts reports how many rows of each kind reference cycleID, directly or
// through its applications.
func rowCounts(s *Store, cycleID int64) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps := make(map[int64]bool)
	counts := map[string]int{}
	for id, a := range s.data.applications {
		if a.CycleID == cycleID {
			apps[id] = true
			counts["applications"]++
		}
	}
	for _, cr := range s.data.criteria {
		if cr.CycleID == cycleID {
			counts["criteria"]++
		}
	}
	for _, doc := range s.data.documents {
		if apps[doc.ApplicationID] {
			counts["documents"]++
		}
	}
	for _, rv := range s.data.reviews {
		if apps[rv.ApplicationID] {
			counts["reviews"]++
		}
	}
	for _, h := range s.data.history {
		if apps[h.ApplicationID] {
			counts["history"]++
		}
	}
	return counts
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCycle(t, s)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx app.Store) error {
		a := &application.Application{ApplicationNumber: "APP-1", UserID: "u1", CycleID: c.ID, Status: application.StatusDraft}
		require.NoError(t, tx.Applications().Create(ctx, a))
		_, err := tx.Cycles().ReplaceGeneralCriteria(ctx, c.ID, []string{"Resident"})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rowCounts(s, c.ID))
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCycle(t, s)

	err := s.InTx(ctx, func(tx app.Store) error {
		return tx.Applications().Create(ctx, &application.Application{
			ApplicationNumber: "APP-1", UserID: "u1", CycleID: c.ID, Status: application.StatusSubmitted,
		})
	})
	require.NoError(t, err)

	n, err := s.Applications().CountOccupying(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInTxHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := New().InTx(ctx, func(app.Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStoredApplicationsAreDetachedFromCallers(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCycle(t, s)

	gpa := 3.1
	a := &application.Application{ApplicationNumber: "APP-1", UserID: "u1", CycleID: c.ID, Status: application.StatusDraft}
	a.AdditionalInfo.Merge(&application.AcademicInfo{GPA: &gpa}, nil)
	require.NoError(t, s.Applications().Create(ctx, a))

	gpa = 1.0
	got, err := s.Applications().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AdditionalInfo.Academic)
	assert.Equal(t, 3.1, *got.AdditionalInfo.Academic.GPA)

	*got.AdditionalInfo.Academic.GPA = 0
	again, err := s.Applications().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.1, *again.AdditionalInfo.Academic.GPA)
}

func TestCreateRejectsSecondLiveApplication(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCycle(t, s)

	first := &application.Application{ApplicationNumber: "APP-1", UserID: "u1", CycleID: c.ID, Status: application.StatusDraft}
	require.NoError(t, s.Applications().Create(ctx, first))

	err := s.Applications().Create(ctx, &application.Application{
		ApplicationNumber: "APP-2", UserID: "u1", CycleID: c.ID, Status: application.StatusDraft,
	})
	assert.ErrorIs(t, err, errs.ErrDuplicateApplication)

	err = s.Applications().Create(ctx, &application.Application{
		ApplicationNumber: "APP-3", UserID: "u1", CycleID: c.ID, Status: application.StatusWithdrawn,
	})
	assert.NoError(t, err)

	_, err = s.Applications().FindOccupying(ctx, "u2", c.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListCyclesFiltersByState(t *testing.T) {
	ctx := context.Background()
	s := New()
	active := seedCycle(t, s)
	closed := seedCycle(t, s)
	closed.State = cycle.StateClosed
	require.NoError(t, s.Cycles().UpdateCycle(ctx, closed))

	got, err := s.Cycles().ListCycles(ctx, cycle.Filter{States: []cycle.LifecycleState{cycle.StateActive}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)

	all, err := s.Cycles().ListCycles(ctx, cycle.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, closed.ID, all[0].ID)
}

func TestCascadeStoreRemovesEveryDependentKind(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedCycle(t, s)
	other := seedCycle(t, s)

	_, err := s.Cycles().ReplaceGeneralCriteria(ctx, c.ID, []string{"Resident"})
	require.NoError(t, err)
	a := &application.Application{ApplicationNumber: "APP-1", UserID: "u1", CycleID: c.ID, Status: application.StatusSubmitted}
	require.NoError(t, s.Applications().Create(ctx, a))
	require.NoError(t, s.Applications().AttachDocuments(ctx, a.ID, []string{"doc-1"}))
	require.NoError(t, s.Applications().CreateReview(ctx, &application.Review{
		ApplicationID: a.ID, ReviewerID: "staff-1", Decision: application.StatusUnderReview,
	}))
	require.NoError(t, s.Applications().AppendHistory(ctx, &application.History{
		ApplicationID: a.ID, ToStatus: application.StatusSubmitted, ChangedBy: "u1",
	}))
	require.NoError(t, s.Applications().Create(ctx, &application.Application{
		ApplicationNumber: "APP-2", UserID: "u1", CycleID: other.ID, Status: application.StatusDraft,
	}))

	assert.Equal(t, map[string]int{
		"applications": 1, "criteria": 1, "documents": 1, "reviews": 1, "history": 1,
	}, rowCounts(s, c.ID))

	err = s.InTx(ctx, func(tx app.Store) error {
		_, err := app.NewCascadeCoordinator(quietEntry()).Delete(ctx, tx.Cascade(), app.NodeCycle, c.ID)
		return err
	})
	require.NoError(t, err)

	assert.Empty(t, rowCounts(s, c.ID))
	assert.Equal(t, map[string]int{"applications": 1}, rowCounts(s, other.ID))
}
