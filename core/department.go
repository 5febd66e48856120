package core

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Department struct {
	DepartmentID uint   `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"size:100;uniqueIndex"`
	Description  string
	CreatedAt    time.Time
}

func (Department) TableName() string {
	return "departments"
}

func FindDepartmentByID(db *gorm.DB, id uint) (*Department, error) {
	var dep Department
	result := db.First(&dep, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &dep, nil
}

func ListDepartments(db *gorm.DB) ([]Department, error) {
	var departments []Department
	if err := db.Order("name").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}
