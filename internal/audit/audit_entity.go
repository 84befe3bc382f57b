package audit

import "time"

type Entry struct {
	ID          uint   `gorm:"primaryKey"`
	Description string `gorm:"size:500;not null"`
	EntityType  string `gorm:"size:50;not null;index:idx_audit_entity"`
	EntityID    uint   `gorm:"index:idx_audit_entity"`
	ActorID     *uint
	RequestID   string `gorm:"size:64"`
	CreatedAt   time.Time
}

func (Entry) TableName() string {
	return "audit_entries"
}

const (
	EntityLeaveApplication = "leave_application"
	EntityLeaveBalance     = "leave_balance"
	EntityLeaveType        = "leave_type"
	EntityServer           = "server"
)
