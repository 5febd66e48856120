package attendance

import (
	"testing"
	"time"

	"faceclock.com/faceclock/core"
	"github.com/stretchr/testify/assert"
)

func TestAdvance(t *testing.T) {
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	later := now.Add(8 * time.Hour)
	confidence := 72.5

	t.Run("Record without check-in checks in", func(t *testing.T) {
		rec := core.Attendance{EmployeeID: 1, Date: "2026-08-24", Status: core.StatusAbsent}

		transition := Advance(&rec, now, &confidence)
		assert.Equal(t, TransitionCheckIn, transition)
		assert.True(t, transition.Mutated())
		assert.Equal(t, core.StatusPresent, rec.Status)
		assert.Equal(t, now, *rec.CheckIn)
		assert.Nil(t, rec.CheckOut)
		assert.Equal(t, confidence, *rec.FaceConfidence)
	})

	t.Run("Checked-in record checks out", func(t *testing.T) {
		rec := core.Attendance{EmployeeID: 1, Status: core.StatusPresent, CheckIn: &now}

		transition := Advance(&rec, later, &confidence)
		assert.Equal(t, TransitionCheckOut, transition)
		assert.Equal(t, later, *rec.CheckOut)
		// Check-in and its confidence stay as recorded.
		assert.Equal(t, now, *rec.CheckIn)
		assert.Nil(t, rec.FaceConfidence)
	})

	t.Run("Completed record is terminal", func(t *testing.T) {
		rec := core.Attendance{EmployeeID: 1, Status: core.StatusPresent, CheckIn: &now, CheckOut: &later}
		before := rec

		transition := Advance(&rec, later.Add(time.Hour), &confidence)
		assert.Equal(t, TransitionCompleted, transition)
		assert.False(t, transition.Mutated())
		assert.Equal(t, before, rec)
	})
}

func TestNewCheckIn(t *testing.T) {
	now := time.Date(2026, 8, 24, 8, 45, 0, 0, time.UTC)
	confidence := 91.0

	rec := NewCheckIn(42, now, &confidence)
	assert.Equal(t, uint(42), rec.EmployeeID)
	assert.Equal(t, "2026-08-24", rec.Date)
	assert.Equal(t, core.StatusPresent, rec.Status)
	assert.Equal(t, now, *rec.CheckIn)
	assert.Nil(t, rec.CheckOut)
	assert.Equal(t, confidence, *rec.FaceConfidence)
}
