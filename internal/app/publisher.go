package app

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"scholarship_admin/internal/domain/notification"
)

// Publishers fans one event out to several publishers. Every publisher is
// tried; the joined error reports the ones that failed.
type Publishers []notification.Publisher

func (ps Publishers) Publish(ctx context.Context, evt notification.Event) error {
	var failed []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

// publishAfterCommit is the non-fatal publish used once a transaction is done.
func publishAfterCommit(ctx context.Context, p notification.Publisher, logger *logrus.Entry, evt notification.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		logger.WithError(err).WithField("event", evt.Type).Warn("Event publish failed")
	}
}
