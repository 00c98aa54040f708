package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"scholarship_admin/internal/domain/cycle"
	"scholarship_admin/internal/domain/errs"
	"scholarship_admin/internal/domain/notification"
)

// CycleView is the externally visible shape of a cycle. It never carries the
// persisted lifecycle state.
type CycleView struct {
	ID                   int64                `json:"id"`
	ProgramID            int64                `json:"programId"`
	SponsorID            int64                `json:"sponsorId"`
	Name                 string               `json:"name"`
	Description          string               `json:"description,omitempty"`
	AcademicYear         string               `json:"academicYear"`
	DisplayName          string               `json:"displayName"`
	Amount               float64              `json:"amount"`
	TotalSlots           int                  `json:"totalSlots"`
	AvailableSlots       int                  `json:"availableSlots"`
	RemainingSlots       int                  `json:"remainingSlots"`
	ApplicationCount     int                  `json:"applicationCount"`
	ApplicationStartDate time.Time            `json:"applicationStartDate"`
	ApplicationEndDate   time.Time            `json:"applicationEndDate"`
	DurationMonths       int                  `json:"durationMonths"`
	DisbursementSchedule string               `json:"disbursementSchedule,omitempty"`
	Status               cycle.ExternalStatus `json:"status"`
	ScholarshipType      string               `json:"type"`
	EligibilityCriteria  []string             `json:"eligibilityCriteria"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

// CreateCycleInput carries everything needed to open a new cycle. Either
// ProgramID names an existing program, or SponsorID and Name create one.
type CreateCycleInput struct {
	ProgramID            int64
	SponsorID            int64  `validate:"required_without=ProgramID"`
	Name                 string `validate:"required_without=ProgramID"`
	Description          string
	AcademicYear         string    `validate:"required"`
	DisplayName          string
	Amount               float64   `validate:"gte=0"`
	Slots                int       `validate:"gte=0"`
	ApplicationStartDate time.Time `validate:"required"`
	ApplicationEndDate   time.Time `validate:"required"`
	DurationMonths       int       `validate:"gte=0"`
	DisbursementSchedule string
	EligibilityCriteria  []string
	ScholarshipType      string
}

// CycleUpdate is a partial edit; nil fields are left alone.
type CycleUpdate struct {
	Name                 *string
	Description          *string
	AcademicYear         *string
	DisplayName          *string
	Amount               *float64
	Slots                *int
	ApplicationStartDate *time.Time
	ApplicationEndDate   *time.Time
	DurationMonths       *int
	DisbursementSchedule *string
	// Status is an external status; it is persisted through the reverse mapping.
	Status              *string
	ScholarshipType     *string
	EligibilityCriteria []string
}

// CycleListFilter drives ListCycles. Status is an external status.
type CycleListFilter struct {
	Status string
	Page   int
	Limit  int
}

// CycleService owns the cycle lifecycle: creation, edits, status mapping,
// slot bookkeeping, criteria and cascading removal.
type CycleService struct {
	store       TxStore
	cascade     *CascadeCoordinator
	publisher   notification.Publisher
	logger      *logrus.Entry
	defaultType string
	now         func() time.Time
}

func NewCycleService(store TxStore, publisher notification.Publisher, logger *logrus.Entry, defaultType string) *CycleService {
	return &CycleService{
		store:       store,
		cascade:     NewCascadeCoordinator(logger),
		publisher:   publisher,
		logger:      logger,
		defaultType: defaultType,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for status resolution and events.
func (s *CycleService) WithClock(now func() time.Time) *CycleService {
	s.now = now
	return s
}

// CreateCycle opens a cycle in the ACTIVE state with both slot counters set
// to the recipient cap.
func (s *CycleService) CreateCycle(ctx context.Context, in CreateCycleInput) (*CycleView, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var view *CycleView
	err := s.store.InTx(ctx, func(tx Store) error {
		repo := tx.Cycles()

		program, err := s.resolveProgram(ctx, repo, in)
		if err != nil {
			return err
		}

		c := &cycle.Cycle{
			ProgramID:            program.ID,
			AcademicYear:         strings.TrimSpace(in.AcademicYear),
			DisplayName:          strings.TrimSpace(in.DisplayName),
			Amount:               in.Amount,
			ApplicationStartDate: in.ApplicationStartDate,
			ApplicationEndDate:   in.ApplicationEndDate,
			DurationMonths:       in.DurationMonths,
			DisbursementSchedule: in.DisbursementSchedule,
			State:                cycle.StateActive,
		}
		if c.DisplayName == "" {
			c.DisplayName = fmt.Sprintf("%s %s", program.Name, c.AcademicYear)
		}
		if t := strings.TrimSpace(in.ScholarshipType); t != "" {
			c.ScholarshipType = sql.NullString{String: t, Valid: true}
		}
		cycle.InitSlots(c, in.Slots)
		if err := c.Validate(); err != nil {
			return err
		}

		if err := repo.CreateCycle(ctx, c); err != nil {
			return fmt.Errorf("failed to create cycle: %w", err)
		}
		if len(in.EligibilityCriteria) > 0 {
			if _, err := replaceEligibilityCriteria(ctx, repo, c.ID, in.EligibilityCriteria); err != nil {
				return err
			}
		}

		view, err = s.buildView(ctx, tx, c, s.now())
		return err
	})
	if err != nil {
		s.logger.WithError(err).Warn("Cycle creation failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cycle_id":   view.ID,
		"program_id": view.ProgramID,
		"slots":      view.TotalSlots,
	}).Info("Cycle created")
	publishAfterCommit(ctx, s.publisher, s.logger, notification.Event{
		Type: notification.EventCycleCreated, CycleID: view.ID, To: string(view.Status), At: s.now(),
	})
	return view, nil
}

func (s *CycleService) resolveProgram(ctx context.Context, repo cycle.Repository, in CreateCycleInput) (*cycle.Program, error) {
	if in.ProgramID != 0 {
		program, err := repo.GetProgram(ctx, in.ProgramID)
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: program %d does not exist", errs.ErrConflictingResource, in.ProgramID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get program %d: %w", in.ProgramID, err)
		}
		return program, nil
	}

	if _, err := repo.GetSponsor(ctx, in.SponsorID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: sponsor %d does not exist", errs.ErrConflictingResource, in.SponsorID)
		}
		return nil, fmt.Errorf("failed to get sponsor %d: %w", in.SponsorID, err)
	}

	program := &cycle.Program{
		SponsorID:     in.SponsorID,
		Name:          strings.TrimSpace(in.Name),
		DefaultAmount: in.Amount,
		DefaultSlots:  in.Slots,
		StartYear:     startYearOf(in.AcademicYear, in.ApplicationStartDate),
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		program.Description = sql.NullString{String: d, Valid: true}
	}
	if err := repo.CreateProgram(ctx, program); err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}
	return program, nil
}

// startYearOf reads the leading year of an academic year such as "2026-2027",
// falling back to the year applications open.
func startYearOf(academicYear string, start time.Time) int {
	var year int
	if _, err := fmt.Sscanf(strings.TrimSpace(academicYear), "%4d", &year); err == nil && year > 0 {
		return year
	}
	return start.Year()
}

// UpdateCycle applies a partial edit in one transaction.
func (s *CycleService) UpdateCycle(ctx context.Context, id int64, patch CycleUpdate) (*CycleView, error) {
	now := s.now()
	var (
		view *CycleView
		from cycle.ExternalStatus
	)
	err := s.store.InTx(ctx, func(tx Store) error {
		repo := tx.Cycles()
		c, err := repo.GetCycleForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get cycle %d: %w", id, err)
		}
		from = cycle.ResolveExternalStatus(c, now)

		if patch.Name != nil || patch.Description != nil {
			if err := s.propagateToProgram(ctx, repo, c.ProgramID, patch.Name, patch.Description); err != nil {
				return err
			}
		}

		if patch.AcademicYear != nil {
			c.AcademicYear = strings.TrimSpace(*patch.AcademicYear)
		}
		if patch.DisplayName != nil {
			c.DisplayName = strings.TrimSpace(*patch.DisplayName)
		}
		if patch.Amount != nil {
			c.Amount = *patch.Amount
		}
		if patch.ApplicationStartDate != nil {
			c.ApplicationStartDate = *patch.ApplicationStartDate
		}
		if patch.ApplicationEndDate != nil {
			c.ApplicationEndDate = *patch.ApplicationEndDate
		}
		if patch.DurationMonths != nil {
			c.DurationMonths = *patch.DurationMonths
		}
		if patch.DisbursementSchedule != nil {
			c.DisbursementSchedule = *patch.DisbursementSchedule
		}
		if patch.Slots != nil {
			cycle.ResizeSlots(c, *patch.Slots)
		}
		if patch.Status != nil {
			ext := cycle.ExternalStatus(strings.ToUpper(strings.TrimSpace(*patch.Status)))
			if _, perr := cycle.ParseExternalStatus(*patch.Status); perr != nil {
				s.logger.WithField("cycle_id", id).WithField("status", *patch.Status).Warn("Unknown external status, mapping to DRAFT")
			}
			c.State = cycle.LifecycleStateFor(ext)
		}
		if patch.ScholarshipType != nil {
			if err := applyScholarshipType(ctx, repo, c, *patch.ScholarshipType); err != nil {
				return err
			}
		}
		if patch.EligibilityCriteria != nil {
			if _, err := replaceEligibilityCriteria(ctx, repo, c.ID, patch.EligibilityCriteria); err != nil {
				return err
			}
		}

		if err := c.Validate(); err != nil {
			return err
		}
		if err := repo.UpdateCycle(ctx, c); err != nil {
			return fmt.Errorf("failed to update cycle %d: %w", id, err)
		}

		view, err = s.buildView(ctx, tx, c, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("cycle_id", id).Info("Cycle updated")
	publishAfterCommit(ctx, s.publisher, s.logger, notification.Event{
		Type: notification.EventCycleUpdated, CycleID: id,
		From: string(from), To: string(view.Status), At: now,
	})
	return view, nil
}

func (s *CycleService) propagateToProgram(ctx context.Context, repo cycle.Repository, programID int64, name, description *string) error {
	program, err := repo.GetProgram(ctx, programID)
	if err != nil {
		return fmt.Errorf("failed to get program %d: %w", programID, err)
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return fmt.Errorf("%w: name must not be blank", errs.ErrInvalidInput)
		}
		program.Name = n
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		program.Description = sql.NullString{String: d, Valid: d != ""}
	}
	if err := repo.UpdateProgram(ctx, program); err != nil {
		return fmt.Errorf("failed to update program %d: %w", programID, err)
	}
	return nil
}

// SetLifecycleState reassigns the persisted state. Any known state may follow
// any other; callers are already authorised.
func (s *CycleService) SetLifecycleState(ctx context.Context, id int64, state string) (*CycleView, error) {
	next, err := cycle.ParseLifecycleState(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}

	now := s.now()
	var (
		view      *CycleView
		fromState cycle.LifecycleState
		from      cycle.ExternalStatus
	)
	err = s.store.InTx(ctx, func(tx Store) error {
		c, err := tx.Cycles().GetCycleForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get cycle %d: %w", id, err)
		}
		fromState, from = c.State, cycle.ResolveExternalStatus(c, now)
		c.State = next
		if err := cycle.CheckSlots(c); err != nil {
			return err
		}
		if err := tx.Cycles().UpdateCycle(ctx, c); err != nil {
			return fmt.Errorf("failed to update cycle %d: %w", id, err)
		}
		view, err = s.buildView(ctx, tx, c, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"cycle_id": id, "from": fromState, "to": next}).Info("Cycle lifecycle state changed")
	publishAfterCommit(ctx, s.publisher, s.logger, notification.Event{
		Type: notification.EventCycleUpdated, CycleID: id,
		From: string(from), To: string(view.Status), At: now,
	})
	return view, nil
}

// DeleteCycle removes the cycle with its criteria, applications and their
// documents, reviews and history, all in one transaction.
func (s *CycleService) DeleteCycle(ctx context.Context, id int64) error {
	var report CascadeReport
	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.Cycles().GetCycleForUpdate(ctx, id); err != nil {
			return fmt.Errorf("failed to get cycle %d: %w", id, err)
		}
		var err error
		report, err = s.cascade.Delete(ctx, tx.Cascade(), NodeCycle, id)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"cycle_id":     id,
		"applications": report[NodeApplication],
		"criteria":     report[NodeCriterion],
	}).Info("Cycle deleted")
	publishAfterCommit(ctx, s.publisher, s.logger, notification.Event{
		Type: notification.EventCycleDeleted, CycleID: id, At: s.now(),
	})
	return nil
}

// GetCycle returns the external view of one cycle.
func (s *CycleService) GetCycle(ctx context.Context, id int64) (*CycleView, error) {
	c, err := s.store.Cycles().GetCycle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get cycle %d: %w", id, err)
	}
	return s.buildView(ctx, s.store, c, s.now())
}

// ListCycles pages through cycles, newest first. The status filter is applied
// to the date-aware external status, so it runs after mapping.
func (s *CycleService) ListCycles(ctx context.Context, f CycleListFilter) (*Page[*CycleView], error) {
	page, limit, offset := normalizePage(f.Page, f.Limit)

	var (
		want   cycle.ExternalStatus
		filter cycle.Filter
	)
	if strings.TrimSpace(f.Status) != "" {
		st, err := cycle.ParseExternalStatus(f.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
		}
		want = st
		filter.States = cycle.CandidateStates(st)
	}

	all, err := s.store.Cycles().ListCycles(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}

	now := s.now()
	matched := all
	if want != "" {
		matched = make([]*cycle.Cycle, 0, len(all))
		for _, c := range all {
			if cycle.ResolveExternalStatus(c, now) == want {
				matched = append(matched, c)
			}
		}
	}

	result := &Page[*CycleView]{Items: []*CycleView{}, Total: len(matched), Page: page, Limit: limit}
	if offset >= len(matched) {
		return result, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	for _, c := range matched[offset:end] {
		v, err := s.buildView(ctx, s.store, c, now)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, v)
	}
	return result, nil
}

// SetEligibilityCriteria replaces the cycle's GENERAL criteria.
func (s *CycleService) SetEligibilityCriteria(ctx context.Context, id int64, values []string) ([]*cycle.Criterion, error) {
	var out []*cycle.Criterion
	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.Cycles().GetCycleForUpdate(ctx, id); err != nil {
			return fmt.Errorf("failed to get cycle %d: %w", id, err)
		}
		var err error
		out, err = replaceEligibilityCriteria(ctx, tx.Cycles(), id, values)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListEligibilityCriteria returns the student-facing criteria of a cycle.
func (s *CycleService) ListEligibilityCriteria(ctx context.Context, id int64) ([]*cycle.Criterion, error) {
	if _, err := s.store.Cycles().GetCycle(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get cycle %d: %w", id, err)
	}
	return eligibilityCriteria(ctx, s.store.Cycles(), id)
}

// SetScholarshipType records the displayed scholarship type of a cycle.
func (s *CycleService) SetScholarshipType(ctx context.Context, id int64, value string) error {
	return s.store.InTx(ctx, func(tx Store) error {
		c, err := tx.Cycles().GetCycleForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get cycle %d: %w", id, err)
		}
		if err := applyScholarshipType(ctx, tx.Cycles(), c, value); err != nil {
			return err
		}
		if err := tx.Cycles().UpdateCycle(ctx, c); err != nil {
			return fmt.Errorf("failed to update cycle %d: %w", id, err)
		}
		return nil
	})
}

// RemainingSlots reports how many more applications fit under the cap.
func (s *CycleService) RemainingSlots(ctx context.Context, id int64) (int, error) {
	c, err := s.store.Cycles().GetCycle(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to get cycle %d: %w", id, err)
	}
	occupying, err := s.store.Applications().CountOccupying(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications of cycle %d: %w", id, err)
	}
	return cycle.RemainingSlots(c, occupying), nil
}

// buildView resolves the external status at now.
func (s *CycleService) buildView(ctx context.Context, st Store, c *cycle.Cycle, now time.Time) (*CycleView, error) {
	program, err := st.Cycles().GetProgram(ctx, c.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get program %d of cycle %d: %w", c.ProgramID, c.ID, err)
	}
	criteria, err := st.Cycles().ListCriteria(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria of cycle %d: %w", c.ID, err)
	}
	occupying, err := st.Applications().CountOccupying(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications of cycle %d: %w", c.ID, err)
	}

	general := make([]*cycle.Criterion, 0, len(criteria))
	for _, cr := range criteria {
		if cr.Type == cycle.CriteriaGeneral {
			general = append(general, cr)
		}
	}

	return &CycleView{
		ID:                   c.ID,
		ProgramID:            program.ID,
		SponsorID:            program.SponsorID,
		Name:                 program.Name,
		Description:          program.Description.String,
		AcademicYear:         c.AcademicYear,
		DisplayName:          c.DisplayName,
		Amount:               c.Amount,
		TotalSlots:           c.TotalSlots,
		AvailableSlots:       c.AvailableSlots,
		RemainingSlots:       cycle.RemainingSlots(c, occupying),
		ApplicationCount:     occupying,
		ApplicationStartDate: c.ApplicationStartDate,
		ApplicationEndDate:   c.ApplicationEndDate,
		DurationMonths:       c.DurationMonths,
		DisbursementSchedule: c.DisbursementSchedule,
		Status:               cycle.ResolveExternalStatus(c, now),
		ScholarshipType:      cycle.ScholarshipTypeOf(c, criteria, s.defaultType),
		EligibilityCriteria:  criteriaValues(general),
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}, nil
}
