package cycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_admin/internal/domain/cycle"
	"scholarship_admin/internal/domain/errs"
)

func TestInitAndResizeSlots(t *testing.T) {
	c := &cycle.Cycle{}
	cycle.InitSlots(c, 5)
	assert.Equal(t, 5, c.TotalSlots)
	assert.Equal(t, 5, c.AvailableSlots)
	require.NoError(t, cycle.CheckSlots(c))

	cycle.ResizeSlots(c, 2)
	assert.Equal(t, 2, c.TotalSlots)
	assert.Equal(t, 2, c.AvailableSlots)
	require.NoError(t, cycle.CheckSlots(c))
}

func TestRemainingSlots(t *testing.T) {
	c := &cycle.Cycle{TotalSlots: 5, AvailableSlots: 5}
	assert.Equal(t, 5, cycle.RemainingSlots(c, 0))
	assert.Equal(t, 0, cycle.RemainingSlots(c, 5))
	assert.Equal(t, 0, cycle.RemainingSlots(c, 7), "never negative after a cap shrink")

	assert.True(t, cycle.HasCapacity(c, 4))
	assert.False(t, cycle.HasCapacity(c, 5))
}

func TestCheckSlots_Violations(t *testing.T) {
	cases := []cycle.Cycle{
		{TotalSlots: 3, AvailableSlots: 4},
		{TotalSlots: -1, AvailableSlots: -1},
		{TotalSlots: 3, AvailableSlots: -1},
	}
	for _, c := range cases {
		c := c
		assert.ErrorIs(t, cycle.CheckSlots(&c), errs.ErrCapacityInvariantViolation)
	}
}

func TestValidate_Dates(t *testing.T) {
	now := time.Now()
	c := &cycle.Cycle{ApplicationStartDate: now, ApplicationEndDate: now}
	assert.ErrorIs(t, c.Validate(), errs.ErrInvalidInput)

	c.ApplicationEndDate = now.Add(time.Hour)
	assert.NoError(t, c.Validate())

	c.Amount = -10
	assert.ErrorIs(t, c.Validate(), errs.ErrInvalidInput)
}
