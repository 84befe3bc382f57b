package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

type Application struct {
	ID          uint `gorm:"primaryKey"`
	EmployeeID  uint `gorm:"not null;index:idx_leave_applications_employee_dates,priority:1"`
	LeaveTypeID uint `gorm:"not null"`

	StartDate time.Time       `gorm:"type:date;not null;index:idx_leave_applications_employee_dates,priority:2"`
	EndDate   time.Time       `gorm:"type:date;not null;index:idx_leave_applications_employee_dates,priority:3"`
	TotalDays decimal.Decimal `gorm:"type:numeric(6,1);not null"`

	Reason                 string  `gorm:"type:varchar(1000);not null"`
	ContactDuringLeave     *string `gorm:"type:varchar(500)"`
	SupportingDocumentPath *string `gorm:"type:varchar(500)"`

	Status         Status     `gorm:"type:varchar(20);not null;index:idx_leave_applications_status"`
	AppliedDate    time.Time  `gorm:"not null"`
	ReviewedByID   *uint      `gorm:"index"`
	ReviewedDate   *time.Time
	ReviewComments *string `gorm:"type:varchar(1000)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Application) TableName() string {
	return "leave_applications"
}

// LedgerYear is the balance year an application draws from: the year of
// its start date, also for leave that crosses into the next year.
func (a Application) LedgerYear() int {
	return a.StartDate.Year()
}
