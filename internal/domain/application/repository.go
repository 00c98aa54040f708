package application

import (
	"context"
)

// Repository defines persistence for applications and their dependents.
// Implementations return errs.ErrNotFound (wrapped) for unknown ids and
// errs.ErrDuplicateApplication when the (user, cycle) uniqueness rule is hit.
type Repository interface {
	Create(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	// GetForUpdate locks the application row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Application, error)
	Update(ctx context.Context, a *Application) error
	// List returns one page matching f, newest first, plus the total match count.
	List(ctx context.Context, f Filter) ([]*Application, int, error)

	// CountOccupying counts applications of the cycle that hold a slot.
	CountOccupying(ctx context.Context, cycleID int64) (int, error)
	// FindOccupying returns the applicant's slot-holding application on the cycle,
	// or errs.ErrNotFound.
	FindOccupying(ctx context.Context, userID string, cycleID int64) (*Application, error)

	// Dependent records
	AttachDocuments(ctx context.Context, applicationID int64, documentIDs []string) error
	ListDocuments(ctx context.Context, applicationID int64) ([]*Document, error)
	CreateReview(ctx context.Context, r *Review) error
	AppendHistory(ctx context.Context, h *History) error
	ListHistory(ctx context.Context, applicationID int64) ([]*History, error)
}
