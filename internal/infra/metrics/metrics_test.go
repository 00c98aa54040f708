package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_admin/internal/domain/notification"
)

func TestRecorderCountsEventsAndTransitions(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, notification.Event{Type: notification.EventCycleCreated, CycleID: 1, To: "OPEN"}))
	require.NoError(t, r.Publish(ctx, notification.Event{
		Type: notification.EventApplicationSubmitted, ApplicationID: 4, From: "DRAFT", To: "SUBMITTED",
	}))
	require.NoError(t, r.Publish(ctx, notification.Event{
		Type: notification.EventApplicationSubmitted, ApplicationID: 5, From: "DRAFT", To: "SUBMITTED",
	}))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.events.WithLabelValues("cycle.created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.events.WithLabelValues("application.submitted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.transitions.WithLabelValues("DRAFT", "SUBMITTED")))
	// cycle events carry no application transition
	assert.Equal(t, 1, testutil.CollectAndCount(r.transitions))
}

func TestRecorderJobRunsAndHandler(t *testing.T) {
	r := NewRecorder()
	r.RecordJob("deadline_digest", nil)
	r.RecordJob("deadline_digest", errors.New("telegram down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobRuns.WithLabelValues("deadline_digest", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobRuns.WithLabelValues("deadline_digest", "false")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "scholarship_scheduler_job_runs_total"))
}
