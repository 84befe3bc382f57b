package leave_test

import (
	"context"
	"sort"
	"time"

	"go-hrms/internal/audit"
	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/leave"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/leavebalance"
	"go-hrms/internal/leavetype"
	"go-hrms/internal/messaging/kafka"

	"gorm.io/gorm"
)

// memStore backs the fake repositories of one test.
type memStore struct {
	employees  map[uint]employee.Employee
	leaveTypes map[uint]leavetype.LeaveType
	balances   map[leavebalance.Key]leavebalance.Balance
	apps       map[uint]leave.Application
	nextAppID  uint
	audits     []audit.Entry
	outbox     []kafka.OutboxEvent
	auditErr   error
}

func newMemStore() *memStore {
	return &memStore{
		employees:  map[uint]employee.Employee{},
		leaveTypes: map[uint]leavetype.LeaveType{},
		balances:   map[leavebalance.Key]leavebalance.Balance{},
		apps:       map[uint]leave.Application{},
	}
}

func (m *memStore) repositories() leave.Repositories {
	return leave.Repositories{
		Leaves:     &memLeaves{m},
		Employees:  &memEmployees{m},
		LeaveTypes: &memLeaveTypes{m},
		Balances:   &memBalances{m},
		Audit:      &memAudit{m},
		Outbox:     &memOutbox{m},
	}
}

func (m *memStore) balance(employeeID, leaveTypeID uint, year int) leavebalance.Balance {
	return m.balances[leavebalance.Key{EmployeeID: employeeID, LeaveTypeID: leaveTypeID, Year: year}]
}

type memLeaves struct{ s *memStore }

func (r *memLeaves) WithTx(*gorm.DB) leave.Repository { return r }

func (r *memLeaves) Create(_ context.Context, a *leave.Application) error {
	r.s.nextAppID++
	a.ID = r.s.nextAppID
	r.s.apps[a.ID] = *a
	return nil
}

func (r *memLeaves) FindByID(_ context.Context, id uint) (*leave.Application, error) {
	a, ok := r.s.apps[id]
	if !ok {
		return nil, leaveerrors.ErrApplicationNotFound
	}
	return &a, nil
}

func (r *memLeaves) FindByIDForUpdate(ctx context.Context, id uint) (*leave.Application, error) {
	return r.FindByID(ctx, id)
}

func (r *memLeaves) Update(_ context.Context, a *leave.Application) error {
	r.s.apps[a.ID] = *a
	return nil
}

func (r *memLeaves) HasOverlapping(_ context.Context, employeeID uint, start, end time.Time) (bool, error) {
	for _, a := range r.s.apps {
		if a.EmployeeID != employeeID {
			continue
		}
		if a.Status != leave.StatusPending && a.Status != leave.StatusApproved {
			continue
		}
		if !a.StartDate.After(end) && !a.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLeaves) ListByEmployee(_ context.Context, employeeID uint, filter leave.ListFilter) ([]leave.Application, error) {
	var out []leave.Application
	for _, a := range r.sorted() {
		if a.EmployeeID == employeeID && (filter.Status == "" || a.Status == filter.Status) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memLeaves) ListPendingForManager(_ context.Context, managerID uint) ([]leave.Application, error) {
	var out []leave.Application
	for _, a := range r.sorted() {
		emp := r.s.employees[a.EmployeeID]
		if a.Status == leave.StatusPending && emp.LineManagerID != nil && *emp.LineManagerID == managerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memLeaves) FindAll(_ context.Context, filter leave.ListFilter) ([]leave.Application, error) {
	var out []leave.Application
	for _, a := range r.sorted() {
		if filter.Status == "" || a.Status == filter.Status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memLeaves) sorted() []leave.Application {
	out := make([]leave.Application, 0, len(r.s.apps))
	for _, a := range r.s.apps {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memEmployees struct{ s *memStore }

func (r *memEmployees) WithTx(*gorm.DB) employee.Repository { return r }

func (r *memEmployees) FindByID(_ context.Context, id uint) (*employee.Employee, error) {
	e, ok := r.s.employees[id]
	if !ok {
		return nil, employeeerrors.ErrEmployeeNotFound
	}
	return &e, nil
}

func (r *memEmployees) FindByIDForUpdate(ctx context.Context, id uint) (*employee.Employee, error) {
	return r.FindByID(ctx, id)
}

type memLeaveTypes struct{ s *memStore }

func (r *memLeaveTypes) WithTx(*gorm.DB) leavetype.Repository { return r }

func (r *memLeaveTypes) FindAll(context.Context) ([]leavetype.LeaveType, error) {
	out := make([]leavetype.LeaveType, 0, len(r.s.leaveTypes))
	for _, lt := range r.s.leaveTypes {
		out = append(out, lt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memLeaveTypes) FindActive(ctx context.Context) ([]leavetype.LeaveType, error) {
	all, _ := r.FindAll(ctx)
	out := all[:0]
	for _, lt := range all {
		if lt.IsActive {
			out = append(out, lt)
		}
	}
	return out, nil
}

func (r *memLeaveTypes) FindByID(_ context.Context, id uint) (*leavetype.LeaveType, error) {
	lt, ok := r.s.leaveTypes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &lt, nil
}

func (r *memLeaveTypes) Count(context.Context) (int64, error) {
	return int64(len(r.s.leaveTypes)), nil
}

func (r *memLeaveTypes) Create(_ context.Context, lt *leavetype.LeaveType) error {
	r.s.leaveTypes[lt.ID] = *lt
	return nil
}

func (r *memLeaveTypes) CreateBatch(ctx context.Context, lts []leavetype.LeaveType) error {
	for i := range lts {
		_ = r.Create(ctx, &lts[i])
	}
	return nil
}

func (r *memLeaveTypes) Update(ctx context.Context, lt *leavetype.LeaveType) error {
	return r.Create(ctx, lt)
}

type memBalances struct{ s *memStore }

func (r *memBalances) WithTx(*gorm.DB) leavebalance.Repository { return r }

func (r *memBalances) FindByKey(_ context.Context, key leavebalance.Key) (*leavebalance.Balance, error) {
	b, ok := r.s.balances[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r *memBalances) FindByKeyForUpdate(ctx context.Context, key leavebalance.Key) (*leavebalance.Balance, error) {
	return r.FindByKey(ctx, key)
}

func (r *memBalances) ListByEmployeeYear(_ context.Context, employeeID uint, year int) ([]leavebalance.Balance, error) {
	var out []leavebalance.Balance
	for k, b := range r.s.balances {
		if k.EmployeeID == employeeID && k.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBalances) CreateMissing(_ context.Context, balances []leavebalance.Balance) (int64, error) {
	var n int64
	for _, b := range balances {
		if _, ok := r.s.balances[b.Key()]; ok {
			continue
		}
		b.ID = uint(len(r.s.balances) + 1)
		r.s.balances[b.Key()] = b
		n++
	}
	return n, nil
}

func (r *memBalances) Update(_ context.Context, b *leavebalance.Balance) error {
	r.s.balances[b.Key()] = *b
	return nil
}

type memAudit struct{ s *memStore }

func (r *memAudit) WithTx(*gorm.DB) audit.Repository { return r }

func (r *memAudit) Log(_ context.Context, e audit.Entry) error {
	if r.s.auditErr != nil {
		return r.s.auditErr
	}
	r.s.audits = append(r.s.audits, e)
	return nil
}

type memOutbox struct{ s *memStore }

func (r *memOutbox) WithTx(*gorm.DB) kafka.OutboxRepository { return r }

func (r *memOutbox) Create(_ context.Context, e kafka.OutboxEvent) error {
	if err := kafka.ValidateOutboxEvent(e); err != nil {
		return err
	}
	r.s.outbox = append(r.s.outbox, e)
	return nil
}

func (r *memOutbox) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) {
	return r.s.outbox, nil
}

func (r *memOutbox) MarkSent(context.Context, string) error { return nil }

func (r *memOutbox) MarkFailed(context.Context, string, string) error { return nil }
