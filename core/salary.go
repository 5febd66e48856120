package core

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Salary is the persisted monthly payroll summary, unique per
// (employee, year, month).
type Salary struct {
	SalaryID   uint      `gorm:"primaryKey;autoIncrement"`
	EmployeeID uint      `gorm:"not null;uniqueIndex:idx_employee_period"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID"`
	Year       int       `gorm:"not null;uniqueIndex:idx_employee_period"`
	Month      int       `gorm:"not null;uniqueIndex:idx_employee_period"`

	BasePay           float64 `gorm:"type:decimal(10,2)"`
	RegularHoursPay   float64 `gorm:"type:decimal(10,2)"`
	OvertimePay       float64 `gorm:"type:decimal(10,2)"`
	TotalSalary       float64 `gorm:"type:decimal(10,2)"`
	TotalDays         int
	TotalWorkingHours float64 `gorm:"type:decimal(6,2)"`
	OvertimeHours     float64 `gorm:"type:decimal(6,2)"`

	GeneratedAt time.Time `gorm:"autoCreateTime"`
}

func (Salary) TableName() string {
	return "salaries"
}

// SalaryBreakdown is the result of a monthly calculation before it is
// persisted.
type SalaryBreakdown struct {
	BasePay           float64
	RegularHoursPay   float64
	OvertimePay       float64
	TotalSalary       float64
	TotalDays         int
	TotalWorkingHours float64
	OvertimeHours     float64
}

// MonthBounds returns the [from, to) date keys covering year/month.
func MonthBounds(year, month int) (string, string) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return DateKey(start), DateKey(start.AddDate(0, 1, 0))
}

// CalculateMonthlySalary computes the breakdown for one employee from
// their present-day attendance: hours above the standard workday accrue
// at the overtime rate, the rest at the hourly rate, plus a pro-rata
// base over a 30-day month.
func CalculateMonthlySalary(emp *Employee, records []Attendance) SalaryBreakdown {
	var breakdown SalaryBreakdown
	standard := float64(emp.StandardWorkHours)

	for i := range records {
		rec := &records[i]
		if rec.CheckIn == nil || rec.CheckOut == nil || rec.Status != StatusPresent {
			continue
		}
		hours := rec.CheckOut.Sub(*rec.CheckIn).Hours()
		if hours > standard {
			breakdown.OvertimeHours += hours - standard
			breakdown.TotalWorkingHours += standard
		} else {
			breakdown.TotalWorkingHours += hours
		}
		breakdown.TotalDays++
	}

	breakdown.BasePay = emp.BaseSalary / 30 * float64(breakdown.TotalDays)
	breakdown.RegularHoursPay = breakdown.TotalWorkingHours * emp.HourlyRate
	breakdown.OvertimePay = breakdown.OvertimeHours * emp.OvertimeRate
	breakdown.TotalSalary = breakdown.BasePay + breakdown.RegularHoursPay + breakdown.OvertimePay
	return breakdown
}

// GenerateSalary computes and upserts the salary row for one employee
// and period.
func GenerateSalary(db *gorm.DB, emp *Employee, year, month int) (*Salary, error) {
	from, to := MonthBounds(year, month)
	records, err := AttendanceBetween(db, emp.EmployeeID, from, to)
	if err != nil {
		return nil, err
	}

	breakdown := CalculateMonthlySalary(emp, records)
	salary := Salary{
		EmployeeID:        emp.EmployeeID,
		Year:              year,
		Month:             month,
		BasePay:           breakdown.BasePay,
		RegularHoursPay:   breakdown.RegularHoursPay,
		OvertimePay:       breakdown.OvertimePay,
		TotalSalary:       breakdown.TotalSalary,
		TotalDays:         breakdown.TotalDays,
		TotalWorkingHours: breakdown.TotalWorkingHours,
		OvertimeHours:     breakdown.OvertimeHours,
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "year"}, {Name: "month"}},
		UpdateAll: true,
	}).Create(&salary).Error
	if err != nil {
		return nil, err
	}
	return &salary, nil
}

// SalariesForPeriod lists salary rows for a period, employees preloaded.
func SalariesForPeriod(db *gorm.DB, year, month int) ([]Salary, error) {
	var salaries []Salary
	err := db.Preload("Employee").Preload("Employee.Department").
		Where("year = ? AND month = ?", year, month).
		Order("employee_id").
		Find(&salaries).Error
	if err != nil {
		return nil, err
	}
	return salaries, nil
}
