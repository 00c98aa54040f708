// internal/domain/cycle/cycle.go
package cycle

import (
	"database/sql"
	"fmt"
	"time"

	"scholarship_admin/internal/domain/errs"
)

// Cycle is one yearly instance of a Program, with its own dates, amount and slot cap.
// Corresponds to the 'cycles' table.
type Cycle struct {
	ID                   int64
	ProgramID            int64 // Foreign Key to programs.id
	AcademicYear         string
	DisplayName          string
	Amount               float64
	TotalSlots           int
	AvailableSlots       int
	ApplicationStartDate time.Time
	ApplicationEndDate   time.Time
	DurationMonths       int
	DisbursementSchedule string
	State                LifecycleState
	ScholarshipType      sql.NullString
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CheckDates enforces applicationStartDate < applicationEndDate.
func (c *Cycle) CheckDates() error {
	if !c.ApplicationStartDate.Before(c.ApplicationEndDate) {
		return fmt.Errorf("%w: application start %s must be before end %s", errs.ErrInvalidInput,
			c.ApplicationStartDate.Format(time.RFC3339), c.ApplicationEndDate.Format(time.RFC3339))
	}
	return nil
}

// Validate runs every invariant that must hold before a cycle row is written.
func (c *Cycle) Validate() error {
	if err := c.CheckDates(); err != nil {
		return err
	}
	if c.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", errs.ErrInvalidInput)
	}
	return CheckSlots(c)
}

// Filter narrows ListCycles at the storage level. Empty States means all.
type Filter struct {
	States []LifecycleState
}
