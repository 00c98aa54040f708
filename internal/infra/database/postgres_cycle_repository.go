package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"scholarship_admin/internal/domain/cycle"
	"scholarship_admin/internal/domain/errs"
)

const cycleColumns = `id, program_id, academic_year, display_name, amount, total_slots, available_slots,
       application_start_date, application_end_date, duration_months, disbursement_schedule,
       state, scholarship_type, created_at, updated_at`

type PostgresCycleRepository struct {
	db queryer
}

func NewPostgresCycleRepository(db queryer) *PostgresCycleRepository {
	return &PostgresCycleRepository{db: db}
}

// --- Sponsor and Program Methods ---

func (r *PostgresCycleRepository) CreateSponsor(ctx context.Context, sp *cycle.Sponsor) error {
	query := `INSERT INTO sponsors (name, sponsor_type)
               VALUES ($1, $2)
               RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, query, sp.Name, sp.Type).Scan(&sp.ID, &sp.CreatedAt); err != nil {
		return translate(err, "creating sponsor")
	}
	return nil
}

func (r *PostgresCycleRepository) GetSponsor(ctx context.Context, id int64) (*cycle.Sponsor, error) {
	query := `SELECT id, name, sponsor_type, created_at FROM sponsors WHERE id = $1`
	sp := &cycle.Sponsor{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&sp.ID, &sp.Name, &sp.Type, &sp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: sponsor %d", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("error getting sponsor by ID: %w", err)
	}
	return sp, nil
}

func (r *PostgresCycleRepository) CreateProgram(ctx context.Context, p *cycle.Program) error {
	query := `INSERT INTO programs (sponsor_id, name, description, default_amount, default_slots, start_year)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.SponsorID, p.Name, p.Description, p.DefaultAmount, p.DefaultSlots, p.StartYear).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translate(err, "creating program")
	}
	return nil
}

func (r *PostgresCycleRepository) GetProgram(ctx context.Context, id int64) (*cycle.Program, error) {
	query := `SELECT id, sponsor_id, name, description, default_amount, default_slots, start_year, created_at, updated_at
               FROM programs WHERE id = $1`
	p := &cycle.Program{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.SponsorID, &p.Name, &p.Description, &p.DefaultAmount, &p.DefaultSlots, &p.StartYear, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: program %d", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("error getting program by ID: %w", err)
	}
	return p, nil
}

func (r *PostgresCycleRepository) UpdateProgram(ctx context.Context, p *cycle.Program) error {
	query := `UPDATE programs
               SET name = $1, description = $2, default_amount = $3, default_slots = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Description, p.DefaultAmount, p.DefaultSlots, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: program %d", errs.ErrNotFound, p.ID)
		}
		return fmt.Errorf("error updating program: %w", err)
	}
	return nil
}

// --- Cycle Methods ---

func scanCycle(row rowScanner) (*cycle.Cycle, error) {
	c := &cycle.Cycle{}
	err := row.Scan(
		&c.ID, &c.ProgramID, &c.AcademicYear, &c.DisplayName, &c.Amount, &c.TotalSlots, &c.AvailableSlots,
		&c.ApplicationStartDate, &c.ApplicationEndDate, &c.DurationMonths, &c.DisbursementSchedule,
		&c.State, &c.ScholarshipType, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *PostgresCycleRepository) CreateCycle(ctx context.Context, c *cycle.Cycle) error {
	query := `INSERT INTO cycles (program_id, academic_year, display_name, amount, total_slots, available_slots,
                                 application_start_date, application_end_date, duration_months, disbursement_schedule,
                                 state, scholarship_type)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		c.ProgramID, c.AcademicYear, c.DisplayName, c.Amount, c.TotalSlots, c.AvailableSlots,
		c.ApplicationStartDate, c.ApplicationEndDate, c.DurationMonths, c.DisbursementSchedule,
		c.State, c.ScholarshipType,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return translate(err, "creating cycle")
	}
	return nil
}

func (r *PostgresCycleRepository) getCycle(ctx context.Context, id int64, lock bool) (*cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM cycles WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	c, err := scanCycle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: cycle %d", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("error getting cycle by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCycleRepository) GetCycle(ctx context.Context, id int64) (*cycle.Cycle, error) {
	return r.getCycle(ctx, id, false)
}

// GetCycleForUpdate locks the row until the surrounding transaction ends.
func (r *PostgresCycleRepository) GetCycleForUpdate(ctx context.Context, id int64) (*cycle.Cycle, error) {
	return r.getCycle(ctx, id, true)
}

func (r *PostgresCycleRepository) UpdateCycle(ctx context.Context, c *cycle.Cycle) error {
	query := `UPDATE cycles
               SET academic_year = $1, display_name = $2, amount = $3, total_slots = $4, available_slots = $5,
                   application_start_date = $6, application_end_date = $7, duration_months = $8,
                   disbursement_schedule = $9, state = $10, scholarship_type = $11, updated_at = NOW()
               WHERE id = $12
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		c.AcademicYear, c.DisplayName, c.Amount, c.TotalSlots, c.AvailableSlots,
		c.ApplicationStartDate, c.ApplicationEndDate, c.DurationMonths,
		c.DisbursementSchedule, c.State, c.ScholarshipType, c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: cycle %d", errs.ErrNotFound, c.ID)
		}
		return translate(err, "updating cycle")
	}
	return nil
}

func (r *PostgresCycleRepository) ListCycles(ctx context.Context, f cycle.Filter) ([]*cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM cycles`
	var args []any
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, st := range f.States {
			states[i] = string(st)
		}
		query += ` WHERE state = ANY($1)`
		args = append(args, pq.Array(states))
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing cycles: %w", err)
	}
	defer rows.Close()

	cycles := make([]*cycle.Cycle, 0)
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning cycle row: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycle rows: %w", err)
	}
	return cycles, nil
}

// --- Criteria Methods ---

func scanCriteria(rows *sql.Rows) ([]*cycle.Criterion, error) {
	criteria := make([]*cycle.Criterion, 0)
	for rows.Next() {
		cr := &cycle.Criterion{}
		if err := rows.Scan(&cr.ID, &cr.CycleID, &cr.Type, &cr.Value, &cr.IsMandatory, &cr.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning criterion row: %w", err)
		}
		criteria = append(criteria, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating criterion rows: %w", err)
	}
	return criteria, nil
}

// ReplaceGeneralCriteria must run inside a transaction: it deletes and then
// inserts.
func (r *PostgresCycleRepository) ReplaceGeneralCriteria(ctx context.Context, cycleID int64, values []string) ([]*cycle.Criterion, error) {
	if _, err := r.DeleteCriteriaByType(ctx, cycleID, cycle.CriteriaGeneral); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []*cycle.Criterion{}, nil
	}

	query := `INSERT INTO cycle_criteria (cycle_id, criteria_type, value, is_mandatory)
               SELECT $1, $2, v, TRUE FROM unnest($3::text[]) WITH ORDINALITY AS t(v, n) ORDER BY n
               RETURNING id, cycle_id, criteria_type, value, is_mandatory, created_at`
	rows, err := r.db.QueryContext(ctx, query, cycleID, cycle.CriteriaGeneral, pq.Array(values))
	if err != nil {
		return nil, translate(err, "inserting eligibility criteria")
	}
	defer rows.Close()
	return scanCriteria(rows)
}

func (r *PostgresCycleRepository) ListCriteria(ctx context.Context, cycleID int64) ([]*cycle.Criterion, error) {
	query := `SELECT id, cycle_id, criteria_type, value, is_mandatory, created_at
               FROM cycle_criteria WHERE cycle_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error listing criteria: %w", err)
	}
	defer rows.Close()
	return scanCriteria(rows)
}

func (r *PostgresCycleRepository) DeleteCriteriaByType(ctx context.Context, cycleID int64, t cycle.CriteriaType) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cycle_criteria WHERE cycle_id = $1 AND criteria_type = $2`, cycleID, t)
	if err != nil {
		return 0, fmt.Errorf("error deleting %s criteria: %w", t, err)
	}
	return res.RowsAffected()
}
