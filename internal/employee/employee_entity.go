package employee

import "time"

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusOnLeave    Status = "ON_LEAVE"
	StatusTerminated Status = "TERMINATED"
)

// Employee is owned by the core HR records; the leave service only reads it.
type Employee struct {
	ID            uint   `gorm:"primaryKey"`
	FullName      string `gorm:"size:200;not null"`
	Email         string `gorm:"size:200;uniqueIndex"`
	DepartmentID  *uint
	LineManagerID *uint  `gorm:"index"`
	Status        Status `gorm:"size:20;not null;default:ACTIVE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Employee) TableName() string {
	return "employees"
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}
