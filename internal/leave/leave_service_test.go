package leave_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-hrms/internal/employee"
	"go-hrms/internal/events"
	"go-hrms/internal/leave"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/leavebalance"
	"go-hrms/internal/leavetype"
	"go-hrms/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	janeID    uint = 1
	managerID uint = 2
	annualID  uint = 1
	sickID    uint = 2
)

// Monday 3 March 2025.
var testNow = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

type serviceFixture struct {
	service leave.Service
	store   *memStore
	sqlMock sqlmock.Sqlmock
}

func setupService(t *testing.T) *serviceFixture {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	mgr := managerID
	store := newMemStore()
	store.employees[janeID] = employee.Employee{ID: janeID, FullName: "Jane Doe", Status: employee.StatusActive, LineManagerID: &mgr}
	store.employees[managerID] = employee.Employee{ID: managerID, FullName: "Mark Manager", Status: employee.StatusActive}
	store.leaveTypes[annualID] = leavetype.LeaveType{ID: annualID, Name: "Annual Leave", DefaultDaysPerYear: 15, IsActive: true, IsPaid: true}
	store.leaveTypes[sickID] = leavetype.LeaveType{ID: sickID, Name: "Sick Leave", DefaultDaysPerYear: 30, IsActive: true, IsPaid: true}

	svc := leave.NewService(gormDB, store.repositories(), leave.WithClock(func() time.Time { return testNow }))
	return &serviceFixture{service: svc, store: store, sqlMock: sqlMock}
}

func (f *serviceFixture) expectTx(commit bool) {
	f.sqlMock.ExpectBegin()
	if commit {
		f.sqlMock.ExpectCommit()
	} else {
		f.sqlMock.ExpectRollback()
	}
}

func days(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDays(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, days(want).Equal(got), "want %s, got %s", want, got)
}

func applyReq(start, end string) leave.ApplyLeaveRequest {
	return leave.ApplyLeaveRequest{LeaveTypeID: annualID, StartDate: start, EndDate: end, Reason: "Family trip"}
}

func TestLeaveService_ApplyApproveCancelScenario(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.expectTx(true)
	applied, err := f.service.Apply(ctx, janeID, applyReq("2025-03-10", "2025-03-12"))
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, applied.Status)
	assertDays(t, "3", applied.TotalDays)

	b := f.store.balance(janeID, annualID, 2025)
	assertDays(t, "15", b.TotalDays)
	assertDays(t, "3", b.PendingDays)
	assertDays(t, "12", b.Available())

	f.expectTx(true)
	approved, err := f.service.Approve(ctx, managerID, applied.ID, "Enjoy")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedByID)
	assert.Equal(t, managerID, *approved.ReviewedByID)

	b = f.store.balance(janeID, annualID, 2025)
	assertDays(t, "3", b.UsedDays)
	assertDays(t, "0", b.PendingDays)
	assertDays(t, "12", b.Available())

	f.expectTx(true)
	cancelled, err := f.service.Cancel(ctx, janeID, applied.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.ReviewedDate)

	b = f.store.balance(janeID, annualID, 2025)
	assertDays(t, "0", b.UsedDays)
	assertDays(t, "15", b.Available())

	require.Len(t, f.store.audits, 3)
	assert.Equal(t, "Jane Doe applied for leave from 10/03/2025 to 12/03/2025", f.store.audits[0].Description)
	assert.Equal(t, "Mark Manager approved leave for Jane Doe from 10/03/2025 to 12/03/2025", f.store.audits[1].Description)
	assert.Equal(t, "Jane Doe cancelled leave from 10/03/2025 to 12/03/2025", f.store.audits[2].Description)

	require.Len(t, f.store.outbox, 3)
	var submitted events.LeaveLifecycleEvent
	require.NoError(t, json.Unmarshal(f.store.outbox[0].Payload, &submitted))
	assert.Equal(t, events.LeaveSubmitted, submitted.EventType)
	require.NotNil(t, submitted.LineManagerID)
	assert.Equal(t, managerID, *submitted.LineManagerID)
	assert.Equal(t, "Annual Leave", submitted.LeaveTypeName)
	assert.Equal(t, events.LeaveApproved, f.store.outbox[1].EventType)
	assert.Equal(t, events.LeaveCancelled, f.store.outbox[2].EventType)
	assert.Equal(t, events.LeaveLifecycleTopic, f.store.outbox[2].Topic)

	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestLeaveService_Apply_Eligibility(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *memStore)
		req     leave.ApplyLeaveRequest
		wantErr error
	}{
		{
			name:    "inactive employee",
			setup:   func(s *memStore) { e := s.employees[janeID]; e.Status = employee.StatusTerminated; s.employees[janeID] = e },
			req:     applyReq("2025-03-10", "2025-03-12"),
			wantErr: leaveerrors.ErrEmployeeNotActive,
		},
		{
			name:    "inactive leave type",
			setup:   func(s *memStore) { lt := s.leaveTypes[annualID]; lt.IsActive = false; s.leaveTypes[annualID] = lt },
			req:     applyReq("2025-03-10", "2025-03-12"),
			wantErr: leaveerrors.ErrLeaveTypeInactive,
		},
		{
			name:    "unknown leave type",
			req:     leave.ApplyLeaveRequest{LeaveTypeID: 99, StartDate: "2025-03-10", EndDate: "2025-03-12", Reason: "x"},
			wantErr: leaveerrors.ErrLeaveTypeInactive,
		},
		{
			name:    "start after end",
			req:     applyReq("2025-03-12", "2025-03-10"),
			wantErr: leaveerrors.ErrInvalidDateRange,
		},
		{
			name:    "backdated",
			req:     applyReq("2025-02-28", "2025-03-04"),
			wantErr: leaveerrors.ErrBackdatedLeave,
		},
		{
			name:    "more days than available",
			req:     applyReq("2025-04-01", "2025-04-30"),
			wantErr: leaveerrors.ErrInsufficientBalance,
		},
		{
			name:    "weekend only",
			req:     applyReq("2025-03-08", "2025-03-09"),
			wantErr: leaveerrors.ErrNoWorkingDays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupService(t)
			if tt.setup != nil {
				tt.setup(f.store)
			}
			f.expectTx(false)

			_, err := f.service.Apply(context.Background(), janeID, tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, apperror.CodeValidationFailed, apperror.CodeOf(err))
			assert.Empty(t, f.store.apps)
			assert.Empty(t, f.store.balances)
			assert.NoError(t, f.sqlMock.ExpectationsWereMet())
		})
	}

	t.Run("invalid date format never opens a transaction", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.Apply(context.Background(), janeID, applyReq("10/03/2025", "2025-03-12"))

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Apply_Overlap(t *testing.T) {
	tests := []struct {
		name        string
		start, end  string
		wantOverlap bool
	}{
		{name: "shared end day overlaps", start: "2025-03-12", end: "2025-03-14", wantOverlap: true},
		{name: "contained range overlaps", start: "2025-03-11", end: "2025-03-11", wantOverlap: true},
		{name: "adjacent range is accepted", start: "2025-03-13", end: "2025-03-14", wantOverlap: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupService(t)
			ctx := context.Background()

			f.expectTx(true)
			_, err := f.service.Apply(ctx, janeID, applyReq("2025-03-10", "2025-03-12"))
			require.NoError(t, err)

			f.expectTx(!tt.wantOverlap)
			_, err = f.service.Apply(ctx, janeID, applyReq(tt.start, tt.end))

			if tt.wantOverlap {
				assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
				assert.Len(t, f.store.apps, 1)
			} else {
				assert.NoError(t, err)
				assert.Len(t, f.store.apps, 2)
			}
			assert.NoError(t, f.sqlMock.ExpectationsWereMet())
		})
	}

	t.Run("cancelled application no longer blocks the range", func(t *testing.T) {
		f := setupService(t)
		ctx := context.Background()

		f.expectTx(true)
		first, err := f.service.Apply(ctx, janeID, applyReq("2025-03-10", "2025-03-12"))
		require.NoError(t, err)
		f.expectTx(true)
		_, err = f.service.Cancel(ctx, janeID, first.ID)
		require.NoError(t, err)

		f.expectTx(true)
		_, err = f.service.Apply(ctx, janeID, applyReq("2025-03-10", "2025-03-12"))

		assert.NoError(t, err)
		assertDays(t, "3", f.store.balance(janeID, annualID, 2025).PendingDays)
	})
}

// seedApplication stores an application and the matching balance state.
func seedApplication(f *serviceFixture, status leave.Status, pending, used string) leave.Application {
	app := leave.Application{
		ID:          10,
		EmployeeID:  janeID,
		LeaveTypeID: annualID,
		StartDate:   time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
		TotalDays:   days("3"),
		Reason:      "Family trip",
		Status:      status,
		AppliedDate: testNow,
	}
	f.store.apps[app.ID] = app
	f.store.nextAppID = app.ID
	key := leavebalance.Key{EmployeeID: janeID, LeaveTypeID: annualID, Year: 2025}
	f.store.balances[key] = leavebalance.Balance{
		ID: 1, EmployeeID: janeID, LeaveTypeID: annualID, Year: 2025,
		TotalDays: days("15"), PendingDays: days(pending), UsedDays: days(used),
	}
	return app
}

func TestLeaveService_Reject(t *testing.T) {
	t.Run("releases pending days", func(t *testing.T) {
		f := setupService(t)
		app := seedApplication(f, leave.StatusPending, "3", "0")
		f.expectTx(true)

		resp, err := f.service.Reject(context.Background(), managerID, app.ID, "Team offsite that week")

		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		require.NotNil(t, resp.ReviewComments)
		assert.Equal(t, "Team offsite that week", *resp.ReviewComments)
		b := f.store.balance(janeID, annualID, 2025)
		assertDays(t, "0", b.PendingDays)
		assertDays(t, "0", b.UsedDays)
		require.Len(t, f.store.audits, 1)
		assert.Equal(t, "Mark Manager rejected leave for Jane Doe. Reason: Team offsite that week", f.store.audits[0].Description)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative comments required", func(t *testing.T) {
		f := setupService(t)
		app := seedApplication(f, leave.StatusPending, "3", "0")
		f.expectTx(false)

		_, err := f.service.Reject(context.Background(), managerID, app.ID, "   ")

		assert.ErrorIs(t, err, leaveerrors.ErrCommentsRequired)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		status  leave.Status
		pending string
		used    string
		act     func(s leave.Service, id uint) error
		wantErr error
	}{
		{
			name: "approve twice", status: leave.StatusApproved, pending: "0", used: "3",
			act: func(s leave.Service, id uint) error {
				_, err := s.Approve(context.Background(), managerID, id, "")
				return err
			},
			wantErr: leaveerrors.ErrInvalidTransition,
		},
		{
			name: "reject approved", status: leave.StatusApproved, pending: "0", used: "3",
			act: func(s leave.Service, id uint) error {
				_, err := s.Reject(context.Background(), managerID, id, "late")
				return err
			},
			wantErr: leaveerrors.ErrInvalidTransition,
		},
		{
			name: "reject cancelled without comments", status: leave.StatusCancelled, pending: "0", used: "0",
			act: func(s leave.Service, id uint) error {
				_, err := s.Reject(context.Background(), managerID, id, "")
				return err
			},
			wantErr: leaveerrors.ErrInvalidTransition,
		},
		{
			name: "cancel rejected", status: leave.StatusRejected, pending: "0", used: "0",
			act: func(s leave.Service, id uint) error {
				_, err := s.Cancel(context.Background(), janeID, id)
				return err
			},
			wantErr: leaveerrors.ErrInvalidTransition,
		},
		{
			name: "cancel cancelled", status: leave.StatusCancelled, pending: "0", used: "0",
			act: func(s leave.Service, id uint) error {
				_, err := s.Cancel(context.Background(), janeID, id)
				return err
			},
			wantErr: leaveerrors.ErrInvalidTransition,
		},
		{
			name: "cancel by someone else", status: leave.StatusPending, pending: "3", used: "0",
			act: func(s leave.Service, id uint) error {
				_, err := s.Cancel(context.Background(), managerID, id)
				return err
			},
			wantErr: leaveerrors.ErrNotApplicant,
		},
		{
			name: "approve own application", status: leave.StatusPending, pending: "3", used: "0",
			act: func(s leave.Service, id uint) error {
				_, err := s.Approve(context.Background(), janeID, id, "")
				return err
			},
			wantErr: leaveerrors.ErrSelfReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupService(t)
			app := seedApplication(f, tt.status, tt.pending, tt.used)
			before := f.store.balance(janeID, annualID, 2025)
			f.expectTx(false)

			err := tt.act(f.service, app.ID)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, apperror.CodeInvalidTransition, apperror.CodeOf(err))
			assert.Equal(t, tt.status, f.store.apps[app.ID].Status)
			assert.Equal(t, before, f.store.balance(janeID, annualID, 2025))
			assert.Empty(t, f.store.audits)
			assert.NoError(t, f.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestLeaveService_Cancel_Pending(t *testing.T) {
	f := setupService(t)
	app := seedApplication(f, leave.StatusPending, "3", "0")
	f.expectTx(true)

	_, err := f.service.Cancel(context.Background(), janeID, app.ID)

	require.NoError(t, err)
	b := f.store.balance(janeID, annualID, 2025)
	assertDays(t, "0", b.PendingDays)
	assertDays(t, "15", b.Available())
}

func TestLeaveService_TransitionFailures(t *testing.T) {
	t.Run("unknown application", func(t *testing.T) {
		f := setupService(t)
		f.expectTx(false)

		_, err := f.service.Approve(context.Background(), managerID, 404, "")

		assert.ErrorIs(t, err, leaveerrors.ErrApplicationNotFound)
	})

	t.Run("missing balance row fails the operation", func(t *testing.T) {
		f := setupService(t)
		app := seedApplication(f, leave.StatusPending, "3", "0")
		f.store.balances = map[leavebalance.Key]leavebalance.Balance{}
		f.expectTx(false)

		_, err := f.service.Approve(context.Background(), managerID, app.ID, "")

		assert.Equal(t, apperror.CodeOperationFailed, apperror.CodeOf(err))
		assert.Equal(t, leave.StatusPending, f.store.apps[app.ID].Status)
	})

	t.Run("audit failure rolls back", func(t *testing.T) {
		f := setupService(t)
		f.store.auditErr = assert.AnError
		f.expectTx(false)

		_, err := f.service.Apply(context.Background(), janeID, applyReq("2025-03-10", "2025-03-12"))

		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, apperror.CodeOperationFailed, apperror.CodeOf(err))
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_CheckEligibility(t *testing.T) {
	f := setupService(t)

	ok, err := f.service.CheckEligibility(context.Background(), janeID, applyReq("2025-03-10", "2025-03-14"))
	require.NoError(t, err)
	assert.True(t, ok.Eligible)
	assertDays(t, "5", ok.TotalDays)
	require.NotNil(t, ok.AvailableDays)
	assertDays(t, "15", *ok.AvailableDays)

	denied, err := f.service.CheckEligibility(context.Background(), janeID, applyReq("2025-02-03", "2025-02-04"))
	require.NoError(t, err)
	assert.False(t, denied.Eligible)
	assert.Equal(t, leaveerrors.ErrBackdatedLeave.Message, denied.Reason)

	assert.Empty(t, f.store.balances)
}

func TestLeaveService_Reads(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.expectTx(true)
	first, err := f.service.Apply(ctx, janeID, applyReq("2025-03-10", "2025-03-12"))
	require.NoError(t, err)
	f.expectTx(true)
	_, err = f.service.Apply(ctx, janeID, applyReq("2025-03-17", "2025-03-18"))
	require.NoError(t, err)
	f.expectTx(true)
	_, err = f.service.Approve(ctx, managerID, first.ID, "")
	require.NoError(t, err)

	pending, err := f.service.GetPendingForManager(ctx, managerID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "2025-03-17", pending[0].StartDate)

	none, err := f.service.GetPendingForManager(ctx, janeID)
	require.NoError(t, err)
	assert.Empty(t, none)

	mine, err := f.service.GetByEmployee(ctx, janeID, leave.ListFilter{Status: leave.StatusApproved})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	got, err := f.service.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)

	_, err = f.service.GetByID(ctx, 999)
	assert.ErrorIs(t, err, leaveerrors.ErrApplicationNotFound)
}
