package leavetype

type CreateLeaveTypeRequest struct {
	Name               string `json:"name" binding:"required,max=100"`
	Description        string `json:"description" binding:"max=500"`
	DefaultDaysPerYear *int   `json:"default_days_per_year" binding:"required,min=0,max=366"`
	RequiresApproval   *bool  `json:"requires_approval"`
	IsPaid             *bool  `json:"is_paid"`
	Color              string `json:"color" binding:"omitempty,hexcolor"`
}

// UpdateLeaveTypeRequest is a partial update; nil fields are left as is.
type UpdateLeaveTypeRequest struct {
	Name               *string `json:"name" binding:"omitempty,max=100"`
	Description        *string `json:"description" binding:"omitempty,max=500"`
	DefaultDaysPerYear *int    `json:"default_days_per_year" binding:"omitempty,min=0,max=366"`
	RequiresApproval   *bool   `json:"requires_approval"`
	IsPaid             *bool   `json:"is_paid"`
	IsActive           *bool   `json:"is_active"`
	Color              *string `json:"color" binding:"omitempty,hexcolor"`
}

type LeaveTypeResponse struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	DefaultDaysPerYear int    `json:"default_days_per_year"`
	RequiresApproval   bool   `json:"requires_approval"`
	IsPaid             bool   `json:"is_paid"`
	IsActive           bool   `json:"is_active"`
	Color              string `json:"color,omitempty"`
}
