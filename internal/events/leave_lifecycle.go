package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	LeaveSubmitted = "leave_submitted"
	LeaveApproved  = "leave_approved"
	LeaveRejected  = "leave_rejected"
	LeaveCancelled = "leave_cancelled"
)

// LeaveLifecycleEvent is published once per committed leave transition.
// LineManagerID is set on submissions so the consumer can address the
// approver without reading the employee table.
type LeaveLifecycleEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	ApplicationID  uint      `json:"application_id"`
	EmployeeID     uint      `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	LineManagerID  *uint     `json:"line_manager_id,omitempty"`
	LeaveTypeID    uint      `json:"leave_type_id"`
	LeaveTypeName  string    `json:"leave_type_name"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	TotalDays      string    `json:"total_days"`
	Status         string    `json:"status"`
	ReviewerID     *uint     `json:"reviewer_id,omitempty"`
	ReviewComments string    `json:"review_comments,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
