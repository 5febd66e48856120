package attendance

import (
	"errors"
	"time"

	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/recognition"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkRecognized creates or advances the day's record for a successful
// recognition. The existence check and the subsequent mutation run as
// one atomic unit: the row is locked for the duration of the
// transaction, and if two requests still race past the check the
// (employee, date) unique key fires and is translated into the benign
// DuplicateAttendance outcome.
func MarkRecognized(db *gorm.DB, employeeID uint, now time.Time, confidence float64) (Transition, *core.Attendance, error) {
	var rec core.Attendance
	var transition Transition
	date := core.DateKey(now)

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("employee_id = ? AND date = ?", employeeID, date).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = NewCheckIn(employeeID, now, &confidence)
			transition = TransitionCheckIn
			return tx.Create(&rec).Error
		}
		if err != nil {
			return err
		}

		transition = Advance(&rec, now, &confidence)
		if !transition.Mutated() {
			return nil
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, recognition.NewError(recognition.KindDuplicateAttendance,
				"Attendance already recorded for today.")
		}
		return "", nil, err
	}
	return transition, &rec, nil
}

// MarkManual is the privileged override: it sets the status directly
// and may supply explicit check-in/check-out times, bypassing the
// matcher entirely.
func MarkManual(db *gorm.DB, employeeID uint, day time.Time, status core.AttendanceStatus, checkIn, checkOut *time.Time) (*core.Attendance, error) {
	var rec core.Attendance
	date := core.DateKey(day)

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("employee_id = ? AND date = ?", employeeID, date).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = core.Attendance{EmployeeID: employeeID, Date: date, Status: status}
		} else if err != nil {
			return err
		}

		rec.Status = status
		if checkIn != nil {
			rec.CheckIn = checkIn
		}
		// A check-out without a check-in would break the record invariant.
		if rec.CheckIn == nil {
			checkOut = nil
		}
		if checkOut != nil {
			rec.CheckOut = checkOut
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
