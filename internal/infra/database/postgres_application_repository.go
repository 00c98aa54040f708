package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq" // For pq.Array

	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/errs"
)

const applicationColumns = `id, application_number, user_id, cycle_id, motivation_letter, additional_info, status,
       decision_notes, decision_by, submitted_at, reviewed_at, decision_at, created_at, updated_at`

type PostgresApplicationRepository struct {
	db queryer
}

func NewPostgresApplicationRepository(db queryer) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

func scanApplication(row rowScanner) (*application.Application, error) {
	a := &application.Application{}
	err := row.Scan(
		&a.ID, &a.ApplicationNumber, &a.UserID, &a.CycleID, &a.MotivationLetter, &a.AdditionalInfo, &a.Status,
		&a.DecisionNotes, &a.DecisionBy, &a.SubmittedAt, &a.ReviewedAt, &a.DecisionAt, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// slotHoldingStatuses is the array form used in SQL filters.
func slotHoldingStatuses() any {
	sts := application.SlotHoldingStatuses()
	out := make([]string, len(sts))
	for i, st := range sts {
		out[i] = string(st)
	}
	return pq.Array(out)
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, a *application.Application) error {
	query := `INSERT INTO applications (application_number, user_id, cycle_id, motivation_letter, additional_info, status)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		a.ApplicationNumber, a.UserID, a.CycleID, a.MotivationLetter, a.AdditionalInfo, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return translate(err, fmt.Sprintf("creating application for %s on cycle %d", a.UserID, a.CycleID))
	}
	return nil
}

func (r *PostgresApplicationRepository) get(ctx context.Context, id int64, lock bool) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	a, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: application %d", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("error getting application by ID: %w", err)
	}
	return a, nil
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id int64) (*application.Application, error) {
	return r.get(ctx, id, false)
}

func (r *PostgresApplicationRepository) GetForUpdate(ctx context.Context, id int64) (*application.Application, error) {
	return r.get(ctx, id, true)
}

func (r *PostgresApplicationRepository) Update(ctx context.Context, a *application.Application) error {
	query := `UPDATE applications
               SET motivation_letter = $1, additional_info = $2, status = $3, decision_notes = $4, decision_by = $5,
                   submitted_at = $6, reviewed_at = $7, decision_at = $8, updated_at = NOW()
               WHERE id = $9
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		a.MotivationLetter, a.AdditionalInfo, a.Status, a.DecisionNotes, a.DecisionBy,
		a.SubmittedAt, a.ReviewedAt, a.DecisionAt, a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: application %d", errs.ErrNotFound, a.ID)
		}
		return translate(err, "updating application")
	}
	return nil
}

// filterClause renders the WHERE part shared by the count and page queries.
func filterClause(f application.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.CycleID != 0 {
		add("cycle_id = $%d", f.CycleID)
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if !f.SubmittedBefore.IsZero() {
		add("submitted_at < $%d", f.SubmittedBefore)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresApplicationRepository) List(ctx context.Context, f application.Filter) ([]*application.Application, int, error) {
	where, args := filterClause(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	query := `SELECT ` + applicationColumns + ` FROM applications` + where + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*application.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, total, nil
}

func (r *PostgresApplicationRepository) CountOccupying(ctx context.Context, cycleID int64) (int, error) {
	query := `SELECT COUNT(*) FROM applications WHERE cycle_id = $1 AND status = ANY($2)`
	var n int
	if err := r.db.QueryRowContext(ctx, query, cycleID, slotHoldingStatuses()).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting applications of cycle %d: %w", cycleID, err)
	}
	return n, nil
}

func (r *PostgresApplicationRepository) FindOccupying(ctx context.Context, userID string, cycleID int64) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
               WHERE user_id = $1 AND cycle_id = $2 AND status = ANY($3)
               ORDER BY id DESC LIMIT 1`
	a, err := scanApplication(r.db.QueryRowContext(ctx, query, userID, cycleID, slotHoldingStatuses()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: live application of %s on cycle %d", errs.ErrNotFound, userID, cycleID)
		}
		return nil, fmt.Errorf("error finding live application: %w", err)
	}
	return a, nil
}

// --- Documents, Reviews and History ---

func (r *PostgresApplicationRepository) AttachDocuments(ctx context.Context, applicationID int64, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	query := `INSERT INTO application_documents (application_id, document_id)
               SELECT $1, unnest($2::text[])
               ON CONFLICT (application_id, document_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, applicationID, pq.Array(documentIDs)); err != nil {
		return translate(err, "attaching documents")
	}
	return nil
}

func (r *PostgresApplicationRepository) ListDocuments(ctx context.Context, applicationID int64) ([]*application.Document, error) {
	query := `SELECT id, application_id, document_id, created_at
               FROM application_documents WHERE application_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*application.Document, 0)
	for rows.Next() {
		d := &application.Document{}
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.DocumentID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		docs = append(docs, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return docs, nil
}

func (r *PostgresApplicationRepository) CreateReview(ctx context.Context, rv *application.Review) error {
	query := `INSERT INTO application_reviews (application_id, reviewer_id, decision, comments)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, rv.ApplicationID, rv.ReviewerID, rv.Decision, rv.Comments).Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		return translate(err, "creating review")
	}
	return nil
}

func (r *PostgresApplicationRepository) AppendHistory(ctx context.Context, h *application.History) error {
	query := `INSERT INTO application_history (application_id, from_status, to_status, changed_by, note)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, h.ApplicationID, h.FromStatus, h.ToStatus, h.ChangedBy, h.Note).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return translate(err, "appending history")
	}
	return nil
}

func (r *PostgresApplicationRepository) ListHistory(ctx context.Context, applicationID int64) ([]*application.History, error) {
	query := `SELECT id, application_id, from_status, to_status, changed_by, note, created_at
               FROM application_history WHERE application_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error listing history: %w", err)
	}
	defer rows.Close()

	history := make([]*application.History, 0)
	for rows.Next() {
		h := &application.History{}
		if err := rows.Scan(&h.ID, &h.ApplicationID, &h.FromStatus, &h.ToStatus, &h.ChangedBy, &h.Note, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		history = append(history, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return history, nil
}
