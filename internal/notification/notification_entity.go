package notification

import "time"

type Type string

const (
	TypeLeaveSubmitted        Type = "LEAVE_SUBMITTED"
	TypeLeaveApproved         Type = "LEAVE_APPROVED"
	TypeLeaveRejected         Type = "LEAVE_REJECTED"
	TypeLeaveCancelled        Type = "LEAVE_CANCELLED"
	TypeLeaveRequiresApproval Type = "LEAVE_REQUIRES_APPROVAL"
	TypeSystem                Type = "SYSTEM"
)

type Notification struct {
	ID         uint    `gorm:"primaryKey"`
	EmployeeID uint    `gorm:"not null;index:idx_notifications_employee_read,priority:1"`
	Title      string  `gorm:"type:varchar(200);not null"`
	Message    string  `gorm:"type:varchar(1000);not null"`
	ActionURL  *string `gorm:"type:varchar(500)"`
	Type       Type    `gorm:"type:varchar(40);not null"`
	IsRead     bool    `gorm:"not null;index:idx_notifications_employee_read,priority:2"`
	// EventKey makes redelivered events land on the same row.
	EventKey  string `gorm:"type:varchar(120);not null;uniqueIndex:uq_notification_event_key"`
	CreatedAt time.Time
	ReadAt    *time.Time
}

func (Notification) TableName() string {
	return "notifications"
}
