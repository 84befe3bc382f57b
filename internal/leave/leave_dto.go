package leave

import "github.com/shopspring/decimal"

type ApplyLeaveRequest struct {
	LeaveTypeID            uint    `json:"leave_type_id" binding:"required"`
	StartDate              string  `json:"start_date" binding:"required"`
	EndDate                string  `json:"end_date" binding:"required"`
	Reason                 string  `json:"reason" binding:"required,max=1000"`
	ContactDuringLeave     *string `json:"contact_during_leave" binding:"omitempty,max=500"`
	SupportingDocumentPath *string `json:"supporting_document_path" binding:"omitempty,max=500"`
}

type ReviewLeaveRequest struct {
	Comments string `json:"comments" binding:"max=1000"`
}

type ListFilter struct {
	Status Status
	Year   int
}

type LeaveResponse struct {
	ID                     uint            `json:"id"`
	EmployeeID             uint            `json:"employee_id"`
	LeaveTypeID            uint            `json:"leave_type_id"`
	StartDate              string          `json:"start_date"`
	EndDate                string          `json:"end_date"`
	TotalDays              decimal.Decimal `json:"total_days"`
	Reason                 string          `json:"reason"`
	ContactDuringLeave     *string         `json:"contact_during_leave,omitempty"`
	SupportingDocumentPath *string         `json:"supporting_document_path,omitempty"`
	Status                 Status          `json:"status"`
	AppliedDate            string          `json:"applied_date"`
	ReviewedByID           *uint           `json:"reviewed_by_id,omitempty"`
	ReviewedDate           *string         `json:"reviewed_date,omitempty"`
	ReviewComments         *string         `json:"review_comments,omitempty"`
}

type EligibilityResponse struct {
	Eligible      bool             `json:"eligible"`
	TotalDays     decimal.Decimal  `json:"total_days"`
	AvailableDays *decimal.Decimal `json:"available_days,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}
