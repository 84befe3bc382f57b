package leavebalance

import "github.com/shopspring/decimal"

type BalanceResponse struct {
	ID               uint            `json:"id"`
	EmployeeID       uint            `json:"employee_id"`
	LeaveTypeID      uint            `json:"leave_type_id"`
	Year             int             `json:"year"`
	TotalDays        decimal.Decimal `json:"total_days"`
	UsedDays         decimal.Decimal `json:"used_days"`
	PendingDays      decimal.Decimal `json:"pending_days"`
	CarryForwardDays decimal.Decimal `json:"carry_forward_days"`
	AvailableDays    decimal.Decimal `json:"available_days"`
}

type InitializeBalancesRequest struct {
	Year int `json:"year" binding:"omitempty,min=1"`
}

type InitializeBalancesResponse struct {
	EmployeeID uint `json:"employee_id"`
	Year       int  `json:"year"`
	Created    int  `json:"created"`
}
