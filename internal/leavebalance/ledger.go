package leavebalance

import (
	"context"
	"errors"
	"fmt"

	"go-hrms/internal/employee"
	leavebalanceerrors "go-hrms/internal/leavebalance/errors"
	"go-hrms/internal/leavetype"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdjustPending moves b.PendingDays by delta. A result below zero is
// rejected and b is left unchanged.
func AdjustPending(b *Balance, delta decimal.Decimal) error {
	next := b.PendingDays.Add(delta)
	if next.IsNegative() {
		return leavebalanceerrors.ErrLedgerInvariant.WithCause(
			fmt.Errorf("pending days %s adjusted by %s on balance %d", b.PendingDays, delta, b.ID),
		)
	}
	b.PendingDays = next
	return nil
}

// AdjustUsed moves b.UsedDays by delta. A result below zero is rejected
// and b is left unchanged.
func AdjustUsed(b *Balance, delta decimal.Decimal) error {
	next := b.UsedDays.Add(delta)
	if next.IsNegative() {
		return leavebalanceerrors.ErrLedgerInvariant.WithCause(
			fmt.Errorf("used days %s adjusted by %s on balance %d", b.UsedDays, delta, b.ID),
		)
	}
	b.UsedDays = next
	return nil
}

// Ledger groups the balance operations that run inside a caller's
// transaction. Bind it with WithTx before use in one.
type Ledger struct {
	balances   Repository
	leaveTypes leavetype.Repository
	employees  employee.Repository
}

func NewLedger(balances Repository, leaveTypes leavetype.Repository, employees employee.Repository) *Ledger {
	return &Ledger{balances: balances, leaveTypes: leaveTypes, employees: employees}
}

func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{
		balances:   l.balances.WithTx(tx),
		leaveTypes: l.leaveTypes.WithTx(tx),
		employees:  l.employees.WithTx(tx),
	}
}

// EnsureInitialized creates the missing balance rows of employeeID for
// every active leave type in year, with Total set to the type's default
// entitlement. It returns the number of rows created; calling it again
// creates none.
func (l *Ledger) EnsureInitialized(ctx context.Context, employeeID uint, year int) (int, error) {
	if year <= 0 {
		return 0, leavebalanceerrors.ErrInvalidYear
	}
	if _, err := l.employees.FindByID(ctx, employeeID); err != nil {
		return 0, err
	}

	types, err := l.leaveTypes.FindActive(ctx)
	if err != nil {
		return 0, leavebalanceerrors.ErrInitializationFailed.WithCause(err)
	}

	rows := make([]Balance, 0, len(types))
	for _, lt := range types {
		rows = append(rows, Balance{
			EmployeeID:       employeeID,
			LeaveTypeID:      lt.ID,
			Year:             year,
			TotalDays:        decimal.NewFromInt(int64(lt.DefaultDaysPerYear)),
			UsedDays:         decimal.Zero,
			PendingDays:      decimal.Zero,
			CarryForwardDays: decimal.Zero,
		})
	}

	created, err := l.balances.CreateMissing(ctx, rows)
	if err != nil {
		return 0, leavebalanceerrors.ErrInitializationFailed.WithCause(err)
	}
	return int(created), nil
}

func (l *Ledger) Get(ctx context.Context, key Key) (*Balance, error) {
	b, err := l.balances.FindByKey(ctx, key)
	return b, mapRepositoryError(err)
}

// Lock reads the row with FOR UPDATE.
func (l *Ledger) Lock(ctx context.Context, key Key) (*Balance, error) {
	b, err := l.balances.FindByKeyForUpdate(ctx, key)
	return b, mapRepositoryError(err)
}

func (l *Ledger) Save(ctx context.Context, b *Balance) error {
	return l.balances.Update(ctx, b)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leavebalanceerrors.ErrBalanceNotFound
	}
	return err
}
