package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DigestSender is implemented by app.DigestService.
type DigestSender interface {
	SendDeadlineDigest(ctx context.Context, horizon time.Duration) (int, error)
	SendReviewBacklog(ctx context.Context, maxAge time.Duration) (int, error)
}

// JobRecorder counts job runs; metrics.Recorder implements it.
type JobRecorder interface {
	RecordJob(job string, err error)
}

const (
	jobDeadlineDigest = "deadline_digest"
	jobReviewBacklog  = "review_backlog"
)

type DigestScheduler struct {
	cronEngine       *cron.Cron
	digests          DigestSender
	recorder         JobRecorder
	logger           *logrus.Entry
	cronSpecDeadline string
	cronSpecBacklog  string
	horizon          time.Duration
	backlogAge       time.Duration
}

func NewDigestScheduler(
	digests DigestSender,
	recorder JobRecorder,
	logger *logrus.Entry,
	cronSpecDeadline string, // e.g., "0 9 * * *" (9 AM daily)
	cronSpecBacklog string, // e.g., "0 10 * * 1" (10 AM on Mondays)
	horizon time.Duration,
	backlogAge time.Duration,
) *DigestScheduler {
	return &DigestScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		digests:          digests,
		recorder:         recorder,
		logger:           logger,
		cronSpecDeadline: cronSpecDeadline,
		cronSpecBacklog:  cronSpecBacklog,
		horizon:          horizon,
		backlogAge:       backlogAge,
	}
}

// Start registers both jobs and starts the cron engine. A bad spec is
// returned before anything runs.
func (s *DigestScheduler) Start() error {
	s.logger.Info("Starting digest scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecDeadline, func() {
		s.runJob(jobDeadlineDigest, 2*time.Minute, func(ctx context.Context) (int, error) {
			return s.digests.SendDeadlineDigest(ctx, s.horizon)
		})
	}); err != nil {
		return fmt.Errorf("could not add deadline digest cron job: %w", err)
	}

	if _, err := s.cronEngine.AddFunc(s.cronSpecBacklog, func() {
		s.runJob(jobReviewBacklog, 2*time.Minute, func(ctx context.Context) (int, error) {
			return s.digests.SendReviewBacklog(ctx, s.backlogAge)
		})
	}); err != nil {
		return fmt.Errorf("could not add review backlog cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Digest scheduler started with jobs.")
	return nil
}

func (s *DigestScheduler) runJob(name string, timeout time.Duration, job func(ctx context.Context) (int, error)) {
	logCtx := s.logger.WithField("job", name)
	logCtx.Info("Cron job triggered")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := job(ctx)
	if s.recorder != nil {
		s.recorder.RecordJob(name, err)
	}
	if err != nil {
		logCtx.WithError(err).Error("Cron job failed")
		return
	}
	logCtx.WithField("items", n).Info("Cron job finished")
}

func (s *DigestScheduler) Stop() {
	s.logger.Info("Stopping digest scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Digest scheduler gracefully stopped.")
}
