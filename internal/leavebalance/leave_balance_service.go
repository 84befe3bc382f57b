package leavebalance

import (
	"context"
	"errors"
	"fmt"

	"go-hrms/internal/audit"
	"go-hrms/internal/employee"
	leavebalanceerrors "go-hrms/internal/leavebalance/errors"
	"go-hrms/internal/leavetype"
	"go-hrms/internal/shared/apperror"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_balance_service.go -destination=mock/leave_balance_service_mock.go -package=mock
type Service interface {
	GetBalance(ctx context.Context, employeeID, leaveTypeID uint, year int) (BalanceResponse, error)
	GetEmployeeBalances(ctx context.Context, employeeID uint, year int) ([]BalanceResponse, error)
	InitializeBalances(ctx context.Context, employeeID uint, year int) (InitializeBalancesResponse, error)
}

type service struct {
	db        *gorm.DB
	repo      Repository
	ledger    *Ledger
	employees employee.Repository
	audit     audit.Repository
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	leaveTypes leavetype.Repository,
	employees employee.Repository,
	auditRepo audit.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		ledger:    NewLedger(repo, leaveTypes, employees),
		employees: employees,
		audit:     auditRepo,
		logger:    l,
	}
}

func (s *service) GetBalance(ctx context.Context, employeeID, leaveTypeID uint, year int) (BalanceResponse, error) {
	if year <= 0 {
		return BalanceResponse{}, leavebalanceerrors.ErrInvalidYear
	}

	b, err := s.ledger.Get(ctx, Key{EmployeeID: employeeID, LeaveTypeID: leaveTypeID, Year: year})
	if err != nil {
		s.logger.Debug("get leave balance failed",
			zap.Uint("employee_id", employeeID),
			zap.Uint("leave_type_id", leaveTypeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return BalanceResponse{}, err
	}
	return mapToResponse(*b), nil
}

func (s *service) GetEmployeeBalances(ctx context.Context, employeeID uint, year int) ([]BalanceResponse, error) {
	if year <= 0 {
		return nil, leavebalanceerrors.ErrInvalidYear
	}

	bs, err := s.repo.ListByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		s.logger.Error("list leave balances failed", zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, apperror.OperationFailed(err)
	}
	return mapToListResponse(bs), nil
}

func (s *service) InitializeBalances(ctx context.Context, employeeID uint, year int) (InitializeBalancesResponse, error) {
	s.logger.Debug("initialize leave balances requested", zap.Uint("employee_id", employeeID), zap.Int("year", year))

	var created int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.ledger.WithTx(tx).EnsureInitialized(ctx, employeeID, year)
		if err != nil {
			return err
		}
		created = n
		if n == 0 {
			return nil
		}

		emp, err := s.employees.WithTx(tx).FindByID(ctx, employeeID)
		if err != nil {
			return err
		}
		return s.audit.WithTx(tx).Log(ctx, audit.Entry{
			Description: fmt.Sprintf("Initialized %d leave balances for %s for %d", n, emp.FullName, year),
			EntityType:  audit.EntityLeaveBalance,
			EntityID:    employeeID,
		})
	})
	if err != nil {
		s.logger.Warn("initialize leave balances failed",
			zap.Uint("employee_id", employeeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return InitializeBalancesResponse{}, err
		}
		return InitializeBalancesResponse{}, leavebalanceerrors.ErrInitializationFailed.WithCause(err)
	}

	s.logger.Info("leave balances initialized",
		zap.Uint("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("created", created),
	)
	return InitializeBalancesResponse{EmployeeID: employeeID, Year: year, Created: created}, nil
}

func mapToResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		ID:               b.ID,
		EmployeeID:       b.EmployeeID,
		LeaveTypeID:      b.LeaveTypeID,
		Year:             b.Year,
		TotalDays:        b.TotalDays,
		UsedDays:         b.UsedDays,
		PendingDays:      b.PendingDays,
		CarryForwardDays: b.CarryForwardDays,
		AvailableDays:    b.Available(),
	}
}

func mapToListResponse(bs []Balance) []BalanceResponse {
	res := make([]BalanceResponse, len(bs))
	for i, b := range bs {
		res[i] = mapToResponse(b)
	}
	return res
}
