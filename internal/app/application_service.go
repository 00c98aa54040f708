package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/cycle"
	"scholarship_admin/internal/domain/errs"
	"scholarship_admin/internal/domain/notification"
)

// CreateApplicationInput is what an applicant sends to open an application.
// UserID comes from the already-authenticated caller.
type CreateApplicationInput struct {
	CycleID          int64  `validate:"required"`
	UserID           string `validate:"required"`
	MotivationLetter string
	AcademicInfo     *application.AcademicInfo
	FinancialInfo    *application.FinancialInfo
	DocumentIDs      []string
}

// ApplicationUpdate is a partial edit of a draft; nil fields are left alone.
type ApplicationUpdate struct {
	MotivationLetter *string
	AcademicInfo     *application.AcademicInfo
	FinancialInfo    *application.FinancialInfo
	DocumentIDs      []string
}

// ApplicationListFilter drives ListApplications.
type ApplicationListFilter struct {
	Status          string
	CycleID         int64
	ApplicantID     string
	SubmittedBefore time.Time
	Page            int
	Limit           int
}

// ApplicationService enforces the application state machine and the
// per-cycle rules around it (one live application per applicant, slot cap).
type ApplicationService struct {
	store     TxStore
	cascade   *CascadeCoordinator
	publisher notification.Publisher
	logger    *logrus.Entry
	now       func() time.Time
	newNumber func(time.Time) string
}

func NewApplicationService(store TxStore, publisher notification.Publisher, logger *logrus.Entry) *ApplicationService {
	return &ApplicationService{
		store:     store,
		cascade:   NewCascadeCoordinator(logger),
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		newNumber: NewApplicationNumber,
	}
}

// WithClock replaces the time source used for timestamps and numbering.
func (s *ApplicationService) WithClock(now func() time.Time) *ApplicationService {
	s.now = now
	return s
}

// NewApplicationNumber builds "APP-<UTC yyyymmddHHMMSS>-<8 hex>". The prefix
// orders numbers by creation time; the random suffix separates numbers minted
// in the same second.
func NewApplicationNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("APP-%s-%s", at.UTC().Format("20060102150405"), suffix)
}

// CreateApplication opens a DRAFT application. The cycle row is locked while
// the duplicate and capacity checks run, so two concurrent creates cannot
// both take the last slot.
func (s *ApplicationService) CreateApplication(ctx context.Context, in CreateApplicationInput) (*application.Application, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := s.now()
	var app *application.Application
	err := s.store.InTx(ctx, func(tx Store) error {
		c, err := tx.Cycles().GetCycleForUpdate(ctx, in.CycleID)
		if err != nil {
			return fmt.Errorf("failed to get cycle %d: %w", in.CycleID, err)
		}

		apps := tx.Applications()
		existing, err := apps.FindOccupying(ctx, in.UserID, in.CycleID)
		if err == nil {
			return fmt.Errorf("%w: applicant %s already has application %s on cycle %d",
				errs.ErrDuplicateApplication, in.UserID, existing.ApplicationNumber, in.CycleID)
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("failed to check existing applications: %w", err)
		}

		occupying, err := apps.CountOccupying(ctx, in.CycleID)
		if err != nil {
			return fmt.Errorf("failed to count applications of cycle %d: %w", in.CycleID, err)
		}
		if !cycle.HasCapacity(c, occupying) {
			return fmt.Errorf("%w: cycle %d has %d of %d slots taken",
				errs.ErrCapacityExhausted, c.ID, occupying, c.TotalSlots)
		}
		if err := cycle.CheckSlots(c); err != nil {
			return err
		}

		app = &application.Application{
			ApplicationNumber: s.newNumber(now),
			UserID:            in.UserID,
			CycleID:           in.CycleID,
			MotivationLetter:  in.MotivationLetter,
			Status:            application.StatusDraft,
		}
		app.AdditionalInfo.Merge(in.AcademicInfo, in.FinancialInfo)

		if err := apps.Create(ctx, app); err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		if docs := normalizeValues(in.DocumentIDs); len(docs) > 0 {
			if err := apps.AttachDocuments(ctx, app.ID, docs); err != nil {
				return fmt.Errorf("failed to attach documents: %w", err)
			}
		}
		return apps.AppendHistory(ctx, &application.History{
			ApplicationID: app.ID,
			ToStatus:      application.StatusDraft,
			ChangedBy:     in.UserID,
		})
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"cycle_id": in.CycleID,
			"user_id":  in.UserID,
		}).Warn("Application creation failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"application_id":     app.ID,
		"application_number": app.ApplicationNumber,
		"cycle_id":           app.CycleID,
	}).Info("Application created")
	publishAfterCommit(ctx, s.publisher, s.logger, notification.Event{
		Type: notification.EventApplicationCreated, CycleID: app.CycleID, ApplicationID: app.ID,
		ApplicationNumber: app.ApplicationNumber, UserID: app.UserID,
		To: string(app.Status), Actor: app.UserID, At: now,
	})
	return app, nil
}

// UpdateApplication edits a DRAFT application. Academic and financial info
// are merged field by field into what is stored.
func (s *ApplicationService) UpdateApplication(ctx context.Context, id int64, patch ApplicationUpdate) (*application.Application, error) {
	var app *application.Application
	err := s.store.InTx(ctx, func(tx Store) error {
		apps := tx.Applications()
		var err error
		app, err = apps.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get application %d: %w", id, err)
		}
		if app.Status != application.StatusDraft {
			return fmt.Errorf("%w: application %d is %s, only DRAFT applications can be edited",
				errs.ErrInvalidTransition, id, app.Status)
		}

		if patch.MotivationLetter != nil {
			app.MotivationLetter = *patch.MotivationLetter
		}
		app.AdditionalInfo.Merge(patch.AcademicInfo, patch.FinancialInfo)
		if err := apps.Update(ctx, app); err != nil {
			return fmt.Errorf("failed to update application %d: %w", id, err)
		}
		if docs := normalizeValues(patch.DocumentIDs); len(docs) > 0 {
			if err := apps.AttachDocuments(ctx, app.ID, docs); err != nil {
				return fmt.Errorf("failed to attach documents: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishAfterCommit(ctx, s.publisher, s.logger, notification.Event{
		Type: notification.EventApplicationUpdated, CycleID: app.CycleID, ApplicationID: app.ID,
		ApplicationNumber: app.ApplicationNumber, UserID: app.UserID, At: s.now(),
	})
	return app, nil
}

// SubmitApplication moves a DRAFT application to SUBMITTED.
func (s *ApplicationService) SubmitApplication(ctx context.Context, id int64, actor string) (*application.Application, error) {
	return s.transition(ctx, id, application.StatusSubmitted, actor, "", notification.EventApplicationSubmitted,
		func(tx Store, a *application.Application, now time.Time) error {
			a.SubmittedAt = sql.NullTime{Time: now, Valid: true}
			return nil
		})
}

// ReviewApplication records a reviewer decision on a SUBMITTED or UNDER_REVIEW
// application. decision must be UNDER_REVIEW, APPROVED or REJECTED.
func (s *ApplicationService) ReviewApplication(ctx context.Context, id int64, decision, comments, reviewerID string) (*application.Application, error) {
	to, err := application.ParseStatus(decision)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if !application.IsReviewDecision(to) {
		return nil, fmt.Errorf("%w: %s is not a review decision", errs.ErrInvalidInput, to)
	}

	return s.transition(ctx, id, to, reviewerID, comments, notification.EventApplicationReviewed,
		func(tx Store, a *application.Application, now time.Time) error {
			note := sql.NullString{String: comments, Valid: comments != ""}
			a.DecisionNotes = note
			a.DecisionBy = sql.NullString{String: reviewerID, Valid: reviewerID != ""}
			a.ReviewedAt = sql.NullTime{Time: now, Valid: true}
			a.DecisionAt = sql.NullTime{Time: now, Valid: true}
			return tx.Applications().CreateReview(ctx, &application.Review{
				ApplicationID: a.ID,
				ReviewerID:    reviewerID,
				Decision:      to,
				Comments:      note,
			})
		})
}

// WithdrawApplication moves any non-terminal application to WITHDRAWN.
func (s *ApplicationService) WithdrawApplication(ctx context.Context, id int64, actor string) (*application.Application, error) {
	return s.transition(ctx, id, application.StatusWithdrawn, actor, "", notification.EventApplicationWithdrawn, nil)
}

// transition runs one guarded status change: lock, check the graph, apply the
// side effects, persist, append history. The event goes out after commit.
func (s *ApplicationService) transition(
	ctx context.Context,
	id int64,
	to application.Status,
	actor, note string,
	eventType notification.EventType,
	apply func(tx Store, a *application.Application, now time.Time) error,
) (*application.Application, error) {
	now := s.now()
	var (
		app  *application.Application
		from application.Status
	)
	err := s.store.InTx(ctx, func(tx Store) error {
		apps := tx.Applications()
		var err error
		app, err = apps.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get application %d: %w", id, err)
		}
		from = app.Status
		if err := application.CheckTransition(from, to); err != nil {
			return err
		}
		if apply != nil {
			if err := apply(tx, app, now); err != nil {
				return err
			}
		}
		app.Status = to
		if err := apps.Update(ctx, app); err != nil {
			return fmt.Errorf("failed to update application %d: %w", id, err)
		}
		return apps.AppendHistory(ctx, &application.History{
			ApplicationID: app.ID,
			FromStatus:    sql.NullString{String: string(from), Valid: true},
			ToStatus:      to,
			ChangedBy:     actor,
			Note:          sql.NullString{String: note, Valid: note != ""},
		})
	})
	logCtx := s.logger.WithFields(logrus.Fields{"application_id": id, "to": to})
	if err != nil {
		logCtx.WithError(err).Warn("Application transition rejected")
		return nil, err
	}

	logCtx.WithField("from", from).Info("Application transitioned")
	publishAfterCommit(ctx, s.publisher, s.logger, notification.Event{
		Type: eventType, CycleID: app.CycleID, ApplicationID: app.ID,
		ApplicationNumber: app.ApplicationNumber, UserID: app.UserID,
		From: string(from), To: string(to), Actor: actor, Note: note, At: now,
	})
	return app, nil
}

// DeleteApplication removes the application with its documents, reviews and
// history in one transaction.
func (s *ApplicationService) DeleteApplication(ctx context.Context, id int64) error {
	var app *application.Application
	err := s.store.InTx(ctx, func(tx Store) error {
		var err error
		app, err = tx.Applications().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get application %d: %w", id, err)
		}
		_, err = s.cascade.Delete(ctx, tx.Cascade(), NodeApplication, id)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.WithField("application_id", id).Info("Application deleted")
	publishAfterCommit(ctx, s.publisher, s.logger, notification.Event{
		Type: notification.EventApplicationDeleted, CycleID: app.CycleID, ApplicationID: id,
		ApplicationNumber: app.ApplicationNumber, UserID: app.UserID, At: s.now(),
	})
	return nil
}

// GetApplication returns one application.
func (s *ApplicationService) GetApplication(ctx context.Context, id int64) (*application.Application, error) {
	app, err := s.store.Applications().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application %d: %w", id, err)
	}
	return app, nil
}

// ListApplications pages through applications, newest first.
func (s *ApplicationService) ListApplications(ctx context.Context, f ApplicationListFilter) (*Page[*application.Application], error) {
	page, limit, offset := normalizePage(f.Page, f.Limit)
	filter := application.Filter{
		CycleID:         f.CycleID,
		UserID:          strings.TrimSpace(f.ApplicantID),
		SubmittedBefore: f.SubmittedBefore,
		Limit:           limit,
		Offset:          offset,
	}
	if strings.TrimSpace(f.Status) != "" {
		st, err := application.ParseStatus(f.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
		}
		filter.Status = st
	}

	items, total, err := s.store.Applications().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	if items == nil {
		items = []*application.Application{}
	}
	return &Page[*application.Application]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// ApplicationHistory returns the status changes of an application, oldest first.
func (s *ApplicationService) ApplicationHistory(ctx context.Context, id int64) ([]*application.History, error) {
	if _, err := s.store.Applications().GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get application %d: %w", id, err)
	}
	return s.store.Applications().ListHistory(ctx, id)
}
