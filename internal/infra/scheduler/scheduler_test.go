package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDigests struct {
	horizon    time.Duration
	backlogAge time.Duration
	err        error
}

func (f *fakeDigests) SendDeadlineDigest(_ context.Context, horizon time.Duration) (int, error) {
	f.horizon = horizon
	return 2, f.err
}

func (f *fakeDigests) SendReviewBacklog(_ context.Context, maxAge time.Duration) (int, error) {
	f.backlogAge = maxAge
	return 0, f.err
}

type runs map[string][]error

func (r runs) RecordJob(job string, err error) { r[job] = append(r[job], err) }

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewDigestScheduler(&fakeDigests{}, nil, quietLogger(), "not a spec", "0 10 * * 1", time.Hour, time.Hour)
	assert.Error(t, s.Start())
}

func TestStartRegistersBothJobs(t *testing.T) {
	s := NewDigestScheduler(&fakeDigests{}, nil, quietLogger(), "0 9 * * *", "0 10 * * 1", time.Hour, time.Hour)
	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Len(t, s.cronEngine.Entries(), 2)
}

func TestRunJobRecordsOutcome(t *testing.T) {
	digests := &fakeDigests{}
	recorded := runs{}
	s := NewDigestScheduler(digests, recorded, quietLogger(), "0 9 * * *", "0 10 * * 1", 7*24*time.Hour, 14*24*time.Hour)

	s.runJob(jobDeadlineDigest, time.Second, func(ctx context.Context) (int, error) {
		return s.digests.SendDeadlineDigest(ctx, s.horizon)
	})
	assert.Equal(t, 7*24*time.Hour, digests.horizon)
	require.Len(t, recorded[jobDeadlineDigest], 1)
	assert.NoError(t, recorded[jobDeadlineDigest][0])

	digests.err = errors.New("telegram down")
	s.runJob(jobReviewBacklog, time.Second, func(ctx context.Context) (int, error) {
		return s.digests.SendReviewBacklog(ctx, s.backlogAge)
	})
	assert.Equal(t, 14*24*time.Hour, digests.backlogAge)
	require.Len(t, recorded[jobReviewBacklog], 1)
	assert.Error(t, recorded[jobReviewBacklog][0])
}
