package cycle

import (
	"fmt"

	"scholarship_admin/internal/domain/errs"
)

// InitSlots sets both counters from the recipient cap of a new cycle.
func InitSlots(c *Cycle, recipientCap int) {
	c.TotalSlots = recipientCap
	c.AvailableSlots = recipientCap
}

// ResizeSlots applies an edited recipient cap. Consumed slots are not carried
// over: both counters take the new cap.
func ResizeSlots(c *Cycle, recipientCap int) {
	c.TotalSlots = recipientCap
	c.AvailableSlots = recipientCap
}

// RemainingSlots is totalSlots minus the applications currently holding a slot,
// floored at zero (a cap can be edited below the current count).
func RemainingSlots(c *Cycle, occupying int) int {
	remaining := c.TotalSlots - occupying
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasCapacity reports whether one more application fits under the cap.
func HasCapacity(c *Cycle, occupying int) bool {
	return occupying < c.TotalSlots
}

// CheckSlots enforces 0 <= availableSlots <= totalSlots.
func CheckSlots(c *Cycle) error {
	if c.TotalSlots < 0 || c.AvailableSlots < 0 {
		return fmt.Errorf("%w: cycle %d has negative slots (total=%d, available=%d)",
			errs.ErrCapacityInvariantViolation, c.ID, c.TotalSlots, c.AvailableSlots)
	}
	if c.AvailableSlots > c.TotalSlots {
		return fmt.Errorf("%w: cycle %d has available=%d above total=%d",
			errs.ErrCapacityInvariantViolation, c.ID, c.AvailableSlots, c.TotalSlots)
	}
	return nil
}
