package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/cycle"
	domainTelegram "scholarship_admin/internal/domain/telegram"
)

// DigestService sends the periodic read-only summaries to the manager chat.
type DigestService struct {
	store          Store
	telegramClient domainTelegram.Client
	managerID      int64
	logger         *logrus.Entry
	now            func() time.Time
}

func NewDigestService(store Store, tc domainTelegram.Client, managerID int64, logger *logrus.Entry) *DigestService {
	return &DigestService{
		store:          store,
		telegramClient: tc,
		managerID:      managerID,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock replaces the time source used to pick due cycles and stale applications.
func (s *DigestService) WithClock(now func() time.Time) *DigestService {
	s.now = now
	return s
}

// SendDeadlineDigest lists open cycles whose window closes within horizon.
// It reports how many cycles were included; nothing is sent when there are none.
func (s *DigestService) SendDeadlineDigest(ctx context.Context, horizon time.Duration) (int, error) {
	now := s.now()
	all, err := s.store.Cycles().ListCycles(ctx, cycle.Filter{States: cycle.CandidateStates(cycle.ExternalOpen)})
	if err != nil {
		return 0, fmt.Errorf("failed to list cycles: %w", err)
	}

	var lines []string
	for _, c := range all {
		if cycle.ResolveExternalStatus(c, now) != cycle.ExternalOpen {
			continue
		}
		if c.ApplicationEndDate.After(now.Add(horizon)) {
			continue
		}
		occupying, err := s.store.Applications().CountOccupying(ctx, c.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to count applications of cycle %d: %w", c.ID, err)
		}
		lines = append(lines, fmt.Sprintf("#%d %s closes %s, %d of %d slots left",
			c.ID, c.DisplayName, c.ApplicationEndDate.Format("2006-01-02 15:04"),
			cycle.RemainingSlots(c, occupying), c.TotalSlots))
	}

	logCtx := s.logger.WithFields(logrus.Fields{"job": "deadline_digest", "cycles": len(lines)})
	if len(lines) == 0 {
		logCtx.Info("No cycles closing soon, digest not sent")
		return 0, nil
	}

	text := fmt.Sprintf("Cycles closing within %d days:\n%s", int(horizon.Hours()/24), strings.Join(lines, "\n"))
	if err := s.telegramClient.SendText(s.managerID, text); err != nil {
		logCtx.WithError(err).Error("Failed to send deadline digest")
		return 0, fmt.Errorf("failed to send deadline digest: %w", err)
	}
	logCtx.Info("Deadline digest sent")
	return len(lines), nil
}

// backlogListed caps the applications named in one backlog message; Telegram
// rejects texts over 4096 characters.
const backlogListed = 20

// SendReviewBacklog reports SUBMITTED applications waiting longer than maxAge
// and everything currently UNDER_REVIEW. Only the first backlogListed stale
// applications are named; the rest are summarised.
func (s *DigestService) SendReviewBacklog(ctx context.Context, maxAge time.Duration) (int, error) {
	now := s.now()
	stale, staleTotal, err := s.store.Applications().List(ctx, application.Filter{
		Status:          application.StatusSubmitted,
		SubmittedBefore: now.Add(-maxAge),
		Limit:           backlogListed,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list submitted applications: %w", err)
	}
	_, inReview, err := s.store.Applications().List(ctx, application.Filter{Status: application.StatusUnderReview, Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("failed to count applications under review: %w", err)
	}

	logCtx := s.logger.WithFields(logrus.Fields{"job": "review_backlog", "stale": staleTotal, "under_review": inReview})
	if staleTotal == 0 && inReview == 0 {
		logCtx.Info("Review backlog empty, report not sent")
		return 0, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Review backlog: %d submitted over %d days, %d under review.", staleTotal, int(maxAge.Hours()/24), inReview)
	for _, a := range stale {
		fmt.Fprintf(&b, "\n#%d %s (cycle %d) waiting since %s", a.ID, a.ApplicationNumber, a.CycleID, a.SubmittedAt.Time.Format("2006-01-02"))
	}
	if rest := staleTotal - len(stale); rest > 0 {
		fmt.Fprintf(&b, "\n... and %d more", rest)
	}
	if err := s.telegramClient.SendText(s.managerID, b.String()); err != nil {
		logCtx.WithError(err).Error("Failed to send review backlog")
		return 0, fmt.Errorf("failed to send review backlog: %w", err)
	}
	logCtx.Info("Review backlog sent")
	return staleTotal + inReview, nil
}
