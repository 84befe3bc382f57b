package leave

import (
	"context"
	"errors"
	"time"

	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/leavebalance"
	leavebalanceerrors "go-hrms/internal/leavebalance/errors"
	"go-hrms/internal/leavetype"
	"go-hrms/internal/shared/workday"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EligibilityRequest struct {
	EmployeeID  uint
	LeaveTypeID uint
	Days        decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
}

// Subject carries the rows loaded while checking, for callers that go on
// to write the application.
type Subject struct {
	Employee  *employee.Employee
	LeaveType *leavetype.LeaveType
	Available decimal.Decimal
}

// Eligibility decides whether a leave request may be filed. The checks run
// in a fixed order and stop at the first failure.
type Eligibility struct {
	leaves     Repository
	employees  employee.Repository
	leaveTypes leavetype.Repository
	ledger     *leavebalance.Ledger
	now        func() time.Time
	lock       bool
}

func NewEligibility(
	leaves Repository,
	employees employee.Repository,
	leaveTypes leavetype.Repository,
	ledger *leavebalance.Ledger,
	now func() time.Time,
) *Eligibility {
	if now == nil {
		now = time.Now
	}
	return &Eligibility{
		leaves:     leaves,
		employees:  employees,
		leaveTypes: leaveTypes,
		ledger:     ledger,
		now:        now,
	}
}

// WithTx binds the checks to tx and locks the employee row, so concurrent
// applications of one employee run their overlap checks one at a time.
func (e *Eligibility) WithTx(tx *gorm.DB) *Eligibility {
	return &Eligibility{
		leaves:     e.leaves.WithTx(tx),
		employees:  e.employees.WithTx(tx),
		leaveTypes: e.leaveTypes.WithTx(tx),
		ledger:     e.ledger.WithTx(tx),
		now:        e.now,
		lock:       tx != nil,
	}
}

// Check returns nil only when every rule passes. A missing balance row is
// read as the leave type's default entitlement, which is what lazy
// initialization would create. Unexpected errors fail closed with
// ErrEligibilityCheckFailed.
func (e *Eligibility) Check(ctx context.Context, req EligibilityRequest) (Subject, error) {
	emp, err := e.loadEmployee(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employeeerrors.ErrEmployeeNotFound) {
			return Subject{}, leaveerrors.ErrEmployeeNotActive
		}
		return Subject{}, leaveerrors.ErrEligibilityCheckFailed.WithCause(err)
	}
	if !emp.IsActive() {
		return Subject{}, leaveerrors.ErrEmployeeNotActive
	}

	lt, err := e.leaveTypes.FindByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Subject{}, leaveerrors.ErrLeaveTypeInactive
		}
		return Subject{}, leaveerrors.ErrEligibilityCheckFailed.WithCause(err)
	}
	if !lt.IsActive {
		return Subject{}, leaveerrors.ErrLeaveTypeInactive
	}

	start, end := workday.DateOf(req.StartDate), workday.DateOf(req.EndDate)
	if start.After(end) {
		return Subject{}, leaveerrors.ErrInvalidDateRange
	}
	if start.Before(workday.DateOf(e.now())) {
		return Subject{}, leaveerrors.ErrBackdatedLeave
	}

	available, err := e.available(ctx, req.EmployeeID, lt, start.Year())
	if err != nil {
		return Subject{}, leaveerrors.ErrEligibilityCheckFailed.WithCause(err)
	}
	if available.LessThan(req.Days) {
		return Subject{}, leaveerrors.ErrInsufficientBalance
	}

	overlapping, err := e.leaves.HasOverlapping(ctx, req.EmployeeID, start, end)
	if err != nil {
		return Subject{}, leaveerrors.ErrEligibilityCheckFailed.WithCause(err)
	}
	if overlapping {
		return Subject{}, leaveerrors.ErrLeaveOverlap
	}

	return Subject{Employee: emp, LeaveType: lt, Available: available}, nil
}

// CanApply is Check reduced to a yes/no answer.
func (e *Eligibility) CanApply(ctx context.Context, req EligibilityRequest) bool {
	_, err := e.Check(ctx, req)
	return err == nil
}

func (e *Eligibility) loadEmployee(ctx context.Context, id uint) (*employee.Employee, error) {
	if e.lock {
		return e.employees.FindByIDForUpdate(ctx, id)
	}
	return e.employees.FindByID(ctx, id)
}

func (e *Eligibility) available(ctx context.Context, employeeID uint, lt *leavetype.LeaveType, year int) (decimal.Decimal, error) {
	b, err := e.ledger.Get(ctx, leavebalance.Key{EmployeeID: employeeID, LeaveTypeID: lt.ID, Year: year})
	if err != nil {
		if errors.Is(err, leavebalanceerrors.ErrBalanceNotFound) {
			return decimal.NewFromInt(int64(lt.DefaultDaysPerYear)), nil
		}
		return decimal.Zero, err
	}
	return b.Available(), nil
}
