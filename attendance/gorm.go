package attendance

import (
	"context"
	"time"

	"faceclock.com/faceclock/core"
)

// Repository adapts the gorm-backed persistence to the Service's
// Directory and Recorder interfaces.
type Repository struct {
	dm *core.DatabaseManager
}

func NewRepository(dm *core.DatabaseManager) *Repository {
	return &Repository{dm: dm}
}

func (r *Repository) FindByID(ctx context.Context, employeeID uint) (*core.Employee, error) {
	return core.FindEmployeeByID(r.dm.DB(ctx), employeeID)
}

func (r *Repository) ListEnrolled(ctx context.Context) ([]core.Employee, error) {
	return core.EnrolledEmployees(r.dm.DB(ctx))
}

func (r *Repository) MarkRecognized(ctx context.Context, employeeID uint, now time.Time, confidence float64) (Transition, error) {
	transition, _, err := MarkRecognized(r.dm.DB(ctx), employeeID, now, confidence)
	return transition, err
}

func (r *Repository) MarkManual(ctx context.Context, employeeID uint, day time.Time, status core.AttendanceStatus, checkIn, checkOut *time.Time) (*core.Attendance, error) {
	return MarkManual(r.dm.DB(ctx), employeeID, day, status, checkIn, checkOut)
}
