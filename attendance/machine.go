package attendance

import (
	"time"

	"faceclock.com/faceclock/core"
)

// Transition names the state change a recognition produced for the
// day's record. Values double as the user-facing attendance status.
type Transition string

const (
	TransitionCheckIn   Transition = "Checked In"
	TransitionCheckOut  Transition = "Checked Out"
	TransitionCompleted Transition = "Already Checked Out"
)

// Mutated reports whether the transition changed the record.
func (t Transition) Mutated() bool {
	return t != TransitionCompleted
}

// Advance applies the per-day state machine to an existing record:
// CheckedIn -> CheckedOut, then the idempotent terminal. A record whose
// check-in is still unset (manual status marks create these) is treated
// as the first recognition of the day.
func Advance(rec *core.Attendance, now time.Time, confidence *float64) Transition {
	if rec.CheckIn == nil {
		rec.Status = core.StatusPresent
		rec.CheckIn = &now
		if confidence != nil {
			rec.FaceConfidence = confidence
		}
		return TransitionCheckIn
	}
	if rec.CheckOut == nil {
		rec.CheckOut = &now
		return TransitionCheckOut
	}
	return TransitionCompleted
}

// NewCheckIn builds the day's first record for a recognition at now.
func NewCheckIn(employeeID uint, now time.Time, confidence *float64) core.Attendance {
	return core.Attendance{
		EmployeeID:     employeeID,
		Date:           core.DateKey(now),
		Status:         core.StatusPresent,
		CheckIn:        &now,
		FaceConfidence: confidence,
	}
}
