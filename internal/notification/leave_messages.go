package notification

import (
	"fmt"

	"go-hrms/internal/events"
	notificationerrors "go-hrms/internal/notification/errors"
	"go-hrms/internal/shared/workday"
)

const displayDateLayout = "02 Jan 2006"

func displayDate(raw string) string {
	t, err := workday.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(displayDateLayout)
}

func eventKey(e events.LeaveLifecycleEvent, recipient uint) string {
	return fmt.Sprintf("%s:%d:%d", e.EventType, e.ApplicationID, recipient)
}

// FromLeaveEvent builds the notifications one lifecycle event produces.
// Submissions also go to the line manager, when there is one.
func FromLeaveEvent(e events.LeaveLifecycleEvent) ([]Notification, error) {
	from, to := displayDate(e.StartDate), displayDate(e.EndDate)
	action := fmt.Sprintf("/leaves/%d", e.ApplicationID)

	applicant := func(t Type, title, msg string) Notification {
		return Notification{
			EmployeeID: e.EmployeeID,
			Title:      title,
			Message:    msg,
			ActionURL:  &action,
			Type:       t,
			EventKey:   eventKey(e, e.EmployeeID),
		}
	}

	var out []Notification
	switch e.EventType {
	case events.LeaveSubmitted:
		leaveName := e.LeaveTypeName
		if leaveName == "" {
			leaveName = "leave"
		}
		out = append(out, applicant(TypeLeaveSubmitted,
			"Leave application submitted",
			fmt.Sprintf("Your %s request from %s to %s (%s days) is awaiting approval.", leaveName, from, to, e.TotalDays),
		))
		if e.LineManagerID != nil {
			out = append(out, Notification{
				EmployeeID: *e.LineManagerID,
				Title:      "Leave approval required",
				Message:    fmt.Sprintf("%s applied for %s from %s to %s (%s days).", e.EmployeeName, leaveName, from, to, e.TotalDays),
				ActionURL:  &action,
				Type:       TypeLeaveRequiresApproval,
				EventKey:   eventKey(e, *e.LineManagerID),
			})
		}
	case events.LeaveApproved:
		out = append(out, applicant(TypeLeaveApproved,
			"Leave approved",
			fmt.Sprintf("Your leave from %s to %s has been approved.", from, to),
		))
	case events.LeaveRejected:
		msg := fmt.Sprintf("Your leave from %s to %s has been rejected.", from, to)
		if e.ReviewComments != "" {
			msg += " Reason: " + e.ReviewComments
		}
		out = append(out, applicant(TypeLeaveRejected, "Leave rejected", msg))
	case events.LeaveCancelled:
		out = append(out, applicant(TypeLeaveCancelled,
			"Leave cancelled",
			fmt.Sprintf("Your leave from %s to %s has been cancelled.", from, to),
		))
		if e.LineManagerID != nil {
			out = append(out, Notification{
				EmployeeID: *e.LineManagerID,
				Title:      "Leave cancelled",
				Message:    fmt.Sprintf("%s cancelled leave from %s to %s.", e.EmployeeName, from, to),
				ActionURL:  &action,
				Type:       TypeLeaveCancelled,
				EventKey:   eventKey(e, *e.LineManagerID),
			})
		}
	default:
		return nil, notificationerrors.ErrUnknownEventType
	}
	return out, nil
}
