package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const employeeCodePrefix = "EMP"

type Employee struct {
	EmployeeID    uint   `gorm:"primaryKey;autoIncrement"`
	Code          string `gorm:"size:10;uniqueIndex"`
	FirstName     string
	Surname       string
	Email         string `gorm:"index"`
	PhoneNumber   string `gorm:"size:15"`
	Address       string
	Position      string
	DepartmentID  *uint
	Department    *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID"`
	JoiningDate   *time.Time  `gorm:"type:date"`
	Active        bool        `gorm:"default:true"`
	IsStaff       bool        `gorm:"default:false"`
	FaceImageKey  *string
	// FaceEncoding holds the packed reference encoding bytes. At most one
	// per employee; regenerated wholesale on re-enrollment, never merged.
	FaceEncoding []byte `gorm:"type:varbinary(1024)"`

	BaseSalary        float64 `gorm:"type:decimal(10,2);default:0"`
	HourlyRate        float64 `gorm:"type:decimal(5,2);default:0"`
	OvertimeRate      float64 `gorm:"type:decimal(5,2);default:0"`
	StandardWorkHours int     `gorm:"default:8"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.Surname)
}

// NextEmployeeCode derives the successor of the highest issued code.
// An empty or unparseable predecessor restarts the sequence at EMP001.
func NextEmployeeCode(last string) string {
	if last == "" || !strings.HasPrefix(last, employeeCodePrefix) {
		return employeeCodePrefix + "001"
	}
	n, err := strconv.Atoi(last[len(employeeCodePrefix):])
	if err != nil {
		return employeeCodePrefix + "001"
	}
	return fmt.Sprintf("%s%03d", employeeCodePrefix, n+1)
}

// GenerateEmployeeCode issues the next monotonic employee code.
func GenerateEmployeeCode(db *gorm.DB) (string, error) {
	var last Employee
	err := db.Order("code DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NextEmployeeCode(""), nil
	}
	if err != nil {
		return "", err
	}
	return NextEmployeeCode(last.Code), nil
}

func FindEmployeeByID(db *gorm.DB, id uint) (*Employee, error) {
	var emp Employee
	result := db.Preload("Department").First(&emp, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil // not found
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &emp, nil
}

func FindEmployeeByCode(db *gorm.DB, code string) (*Employee, error) {
	var emp Employee
	result := db.Preload("Department").Where("code = ?", code).First(&emp)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &emp, nil
}

// EnrolledEmployees lists active employees that can be auto-identified,
// i.e. those with a stored reference encoding. Employees without one are
// excluded from the identification candidate set entirely.
func EnrolledEmployees(db *gorm.DB) ([]Employee, error) {
	var employees []Employee
	err := db.Preload("Department").
		Where("active = ? AND face_encoding IS NOT NULL", true).
		Order("employee_id").
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

// ListEmployees returns every employee, departments preloaded.
func ListEmployees(db *gorm.DB) ([]Employee, error) {
	var employees []Employee
	err := db.Preload("Department").Order("employee_id").Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

// SaveFaceEncoding replaces the employee's reference encoding and photo
// key. The caller must invalidate any decode cache entry for this
// employee before serving the next recognition request.
func SaveFaceEncoding(db *gorm.DB, employeeID uint, encoding []byte, imageKey *string) error {
	updates := map[string]interface{}{"face_encoding": encoding}
	if imageKey != nil {
		updates["face_image_key"] = *imageKey
	}
	result := db.Model(&Employee{}).Where("employee_id = ?", employeeID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("no employee found with the given ID")
	}
	return nil
}
