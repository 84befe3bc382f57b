package leavebalance_test

import (
	"context"
	"testing"

	"go-hrms/internal/audit"
	auditMock "go-hrms/internal/audit/mock"
	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"
	employeeMock "go-hrms/internal/employee/mock"
	"go-hrms/internal/leavebalance"
	leavebalanceerrors "go-hrms/internal/leavebalance/errors"
	leavebalanceMock "go-hrms/internal/leavebalance/mock"
	"go-hrms/internal/leavetype"
	leavetypeMock "go-hrms/internal/leavetype/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type serviceDeps struct {
	service    leavebalance.Service
	sqlMock    sqlmock.Sqlmock
	balances   *leavebalanceMock.MockRepository
	leaveTypes *leavetypeMock.MockRepository
	employees  *employeeMock.MockRepository
	audit      *auditMock.MockRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	d := &serviceDeps{
		sqlMock:    sqlMock,
		balances:   leavebalanceMock.NewMockRepository(ctrl),
		leaveTypes: leavetypeMock.NewMockRepository(ctrl),
		employees:  employeeMock.NewMockRepository(ctrl),
		audit:      auditMock.NewMockRepository(ctrl),
	}
	d.balances.EXPECT().WithTx(gomock.Any()).Return(d.balances).AnyTimes()
	d.leaveTypes.EXPECT().WithTx(gomock.Any()).Return(d.leaveTypes).AnyTimes()
	d.employees.EXPECT().WithTx(gomock.Any()).Return(d.employees).AnyTimes()
	d.audit.EXPECT().WithTx(gomock.Any()).Return(d.audit).AnyTimes()

	d.service = leavebalance.NewService(gormDB, d.balances, d.leaveTypes, d.employees, d.audit)
	return d
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestLeaveBalanceService_GetBalance(t *testing.T) {
	ctx := context.Background()
	key := leavebalance.Key{EmployeeID: 7, LeaveTypeID: 1, Year: 2024}

	t.Run("success computes available", func(t *testing.T) {
		d := setupServiceTest(t)
		d.balances.EXPECT().FindByKey(gomock.Any(), key).Return(&leavebalance.Balance{
			ID: 1, EmployeeID: 7, LeaveTypeID: 1, Year: 2024,
			TotalDays: days("15"), UsedDays: days("2"), PendingDays: days("3"),
		}, nil)

		resp, err := d.service.GetBalance(ctx, 7, 1, 2024)

		require.NoError(t, err)
		assert.True(t, days("10").Equal(resp.AvailableDays))
	})

	t.Run("negative not found", func(t *testing.T) {
		d := setupServiceTest(t)
		d.balances.EXPECT().FindByKey(gomock.Any(), key).Return(nil, gorm.ErrRecordNotFound)

		_, err := d.service.GetBalance(ctx, 7, 1, 2024)

		assert.ErrorIs(t, err, leavebalanceerrors.ErrBalanceNotFound)
	})

	t.Run("negative invalid year", func(t *testing.T) {
		d := setupServiceTest(t)

		_, err := d.service.GetBalance(ctx, 7, 1, -1)

		assert.ErrorIs(t, err, leavebalanceerrors.ErrInvalidYear)
	})
}

func TestLeaveBalanceService_GetEmployeeBalances(t *testing.T) {
	d := setupServiceTest(t)
	d.balances.EXPECT().ListByEmployeeYear(gomock.Any(), uint(7), 2024).Return([]leavebalance.Balance{
		{ID: 1, LeaveTypeID: 1, TotalDays: days("15")},
		{ID: 2, LeaveTypeID: 2, TotalDays: days("30"), UsedDays: days("1")},
	}, nil)

	resp, err := d.service.GetEmployeeBalances(context.Background(), 7, 2024)

	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.True(t, days("29").Equal(resp[1].AvailableDays))
}

func TestLeaveBalanceService_InitializeBalances(t *testing.T) {
	ctx := context.Background()
	jane := &employee.Employee{ID: 7, FullName: "Jane Doe", Status: employee.StatusActive}
	types := []leavetype.LeaveType{{ID: 1, DefaultDaysPerYear: 15}, {ID: 2, DefaultDaysPerYear: 30}}

	t.Run("success creates rows and audits", func(t *testing.T) {
		d := setupServiceTest(t)
		expectTx(t, d.sqlMock, true)

		d.employees.EXPECT().FindByID(gomock.Any(), uint(7)).Return(jane, nil).Times(2)
		d.leaveTypes.EXPECT().FindActive(gomock.Any()).Return(types, nil)
		d.balances.EXPECT().CreateMissing(gomock.Any(), gomock.Len(2)).Return(int64(2), nil)
		d.audit.EXPECT().Log(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Entry) error {
			assert.Equal(t, "Initialized 2 leave balances for Jane Doe for 2024", e.Description)
			assert.Equal(t, audit.EntityLeaveBalance, e.EntityType)
			return nil
		})

		resp, err := d.service.InitializeBalances(ctx, 7, 2024)

		require.NoError(t, err)
		assert.Equal(t, leavebalance.InitializeBalancesResponse{EmployeeID: 7, Year: 2024, Created: 2}, resp)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("idempotent second call writes no audit", func(t *testing.T) {
		d := setupServiceTest(t)
		expectTx(t, d.sqlMock, true)

		d.employees.EXPECT().FindByID(gomock.Any(), uint(7)).Return(jane, nil)
		d.leaveTypes.EXPECT().FindActive(gomock.Any()).Return(types, nil)
		d.balances.EXPECT().CreateMissing(gomock.Any(), gomock.Len(2)).Return(int64(0), nil)

		resp, err := d.service.InitializeBalances(ctx, 7, 2024)

		require.NoError(t, err)
		assert.Zero(t, resp.Created)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown employee rolls back", func(t *testing.T) {
		d := setupServiceTest(t)
		expectTx(t, d.sqlMock, false)

		d.employees.EXPECT().FindByID(gomock.Any(), uint(9)).Return(nil, employeeerrors.ErrEmployeeNotFound)

		_, err := d.service.InitializeBalances(ctx, 9, 2024)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative audit failure rolls back", func(t *testing.T) {
		d := setupServiceTest(t)
		expectTx(t, d.sqlMock, false)

		d.employees.EXPECT().FindByID(gomock.Any(), uint(7)).Return(jane, nil).Times(2)
		d.leaveTypes.EXPECT().FindActive(gomock.Any()).Return(types, nil)
		d.balances.EXPECT().CreateMissing(gomock.Any(), gomock.Any()).Return(int64(2), nil)
		d.audit.EXPECT().Log(gomock.Any(), gomock.Any()).Return(assert.AnError)

		_, err := d.service.InitializeBalances(ctx, 7, 2024)

		assert.ErrorIs(t, err, leavebalanceerrors.ErrInitializationFailed)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})
}
