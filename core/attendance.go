package core

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusHalfDay AttendanceStatus = "half_day"
)

// Attendance is the daily record per employee. The (employee, date)
// uniqueness constraint is the authoritative guard against two racing
// recognitions creating duplicate rows.
type Attendance struct {
	AttendanceID   uint      `gorm:"primaryKey;autoIncrement"`
	EmployeeID     uint      `gorm:"not null;uniqueIndex:idx_employee_date"`
	Employee       *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID"`
	Date           string    `gorm:"type:date;not null;uniqueIndex:idx_employee_date"`
	Status         AttendanceStatus `gorm:"size:20"`
	CheckIn        *time.Time
	CheckOut       *time.Time
	FaceConfidence *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Attendance) TableName() string {
	return "attendances"
}

// WorkingHours returns the hours between check-in and check-out,
// rounded to two decimals. Zero when either side is unset.
func (a *Attendance) WorkingHours() float64 {
	if a.CheckIn == nil || a.CheckOut == nil {
		return 0
	}
	hours := a.CheckOut.Sub(*a.CheckIn).Hours()
	return float64(int(hours*100+0.5)) / 100
}

// DateKey formats t as the calendar-date key attendance rows use.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// AttendanceForDate fetches one employee's record for a date key.
func AttendanceForDate(db *gorm.DB, employeeID uint, date string) (*Attendance, error) {
	var rec Attendance
	err := db.Where("employee_id = ? AND date = ?", employeeID, date).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// AttendanceAllBetween lists every employee's records in [from, to),
// employees preloaded, for reporting.
func AttendanceAllBetween(db *gorm.DB, from, to string) ([]Attendance, error) {
	var records []Attendance
	err := db.Preload("Employee").Preload("Employee.Department").
		Where("date >= ? AND date < ?", from, to).
		Order("date, employee_id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// AttendanceBetween lists one employee's records in [from, to).
func AttendanceBetween(db *gorm.DB, employeeID uint, from, to string) ([]Attendance, error) {
	var records []Attendance
	err := db.Where("employee_id = ? AND date >= ? AND date < ?", employeeID, from, to).
		Order("date").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
