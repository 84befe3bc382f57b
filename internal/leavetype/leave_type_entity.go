package leavetype

import "time"

type LeaveType struct {
	ID                 uint   `gorm:"primaryKey"`
	Name               string `gorm:"size:100;not null;uniqueIndex:uq_leave_type_name"`
	Description        string `gorm:"size:500"`
	DefaultDaysPerYear int    `gorm:"not null;default:0"`
	RequiresApproval   bool   `gorm:"not null"`
	IsPaid             bool   `gorm:"not null"`
	IsActive           bool   `gorm:"not null"`
	Color              string `gorm:"size:7"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// DefaultCatalogue is inserted by SeedDefaults into an empty registry.
func DefaultCatalogue() []LeaveType {
	return []LeaveType{
		{Name: "Annual Leave", Description: "Paid vacation leave", DefaultDaysPerYear: 15, RequiresApproval: true, IsPaid: true, IsActive: true, Color: "#4CAF50"},
		{Name: "Sick Leave", Description: "Leave for illness or medical appointments", DefaultDaysPerYear: 30, RequiresApproval: true, IsPaid: true, IsActive: true, Color: "#F44336"},
		{Name: "Family Responsibility Leave", Description: "Leave for family emergencies", DefaultDaysPerYear: 3, RequiresApproval: true, IsPaid: true, IsActive: true, Color: "#FF9800"},
		{Name: "Maternity Leave", Description: "Leave for the birth of a child", DefaultDaysPerYear: 120, RequiresApproval: true, IsPaid: true, IsActive: true, Color: "#E91E63"},
		{Name: "Paternity Leave", Description: "Leave for new fathers", DefaultDaysPerYear: 10, RequiresApproval: true, IsPaid: true, IsActive: true, Color: "#2196F3"},
		{Name: "Study Leave", Description: "Leave for examinations and study", DefaultDaysPerYear: 5, RequiresApproval: true, IsPaid: true, IsActive: true, Color: "#9C27B0"},
		{Name: "Unpaid Leave", Description: "Leave without pay", DefaultDaysPerYear: 0, RequiresApproval: true, IsPaid: false, IsActive: true, Color: "#9E9E9E"},
	}
}
