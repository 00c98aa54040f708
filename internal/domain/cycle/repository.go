package cycle

import (
	"context"
)

// Repository defines persistence for sponsors, programs, cycles and their criteria.
// Implementations return errs.ErrNotFound (wrapped) for unknown ids.
type Repository interface {
	// Sponsor and Program methods
	CreateSponsor(ctx context.Context, s *Sponsor) error
	GetSponsor(ctx context.Context, id int64) (*Sponsor, error)
	CreateProgram(ctx context.Context, p *Program) error
	GetProgram(ctx context.Context, id int64) (*Program, error)
	UpdateProgram(ctx context.Context, p *Program) error

	// Cycle methods
	CreateCycle(ctx context.Context, c *Cycle) error
	GetCycle(ctx context.Context, id int64) (*Cycle, error)
	// GetCycleForUpdate locks the cycle row until the surrounding transaction ends.
	GetCycleForUpdate(ctx context.Context, id int64) (*Cycle, error)
	UpdateCycle(ctx context.Context, c *Cycle) error
	ListCycles(ctx context.Context, f Filter) ([]*Cycle, error)

	// Criteria methods
	ReplaceGeneralCriteria(ctx context.Context, cycleID int64, values []string) ([]*Criterion, error)
	ListCriteria(ctx context.Context, cycleID int64) ([]*Criterion, error)
	DeleteCriteriaByType(ctx context.Context, cycleID int64, t CriteriaType) (int64, error)
}
