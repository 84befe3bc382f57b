package leavebalance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is one ledger row per (employee, leave type, year).
type Balance struct {
	ID               uint            `gorm:"primaryKey"`
	EmployeeID       uint            `gorm:"not null;uniqueIndex:uq_leave_balance_key,priority:1"`
	LeaveTypeID      uint            `gorm:"not null;uniqueIndex:uq_leave_balance_key,priority:2"`
	Year             int             `gorm:"not null;uniqueIndex:uq_leave_balance_key,priority:3"`
	TotalDays        decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	UsedDays         decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	PendingDays      decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	CarryForwardDays decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Balance) TableName() string {
	return "leave_balances"
}

// Available is Total - Used - Pending. Carry-forward days are tracked but
// not added.
func (b Balance) Available() decimal.Decimal {
	return b.TotalDays.Sub(b.UsedDays).Sub(b.PendingDays)
}

type Key struct {
	EmployeeID  uint
	LeaveTypeID uint
	Year        int
}

func (b Balance) Key() Key {
	return Key{EmployeeID: b.EmployeeID, LeaveTypeID: b.LeaveTypeID, Year: b.Year}
}
