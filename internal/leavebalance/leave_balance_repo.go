package leavebalance

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_balance_repo.go -destination=mock/leave_balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByKey(ctx context.Context, key Key) (*Balance, error)
	FindByKeyForUpdate(ctx context.Context, key Key) (*Balance, error)
	ListByEmployeeYear(ctx context.Context, employeeID uint, year int) ([]Balance, error)
	CreateMissing(ctx context.Context, balances []Balance) (int64, error)
	Update(ctx context.Context, b *Balance) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func byKey(key Key) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("employee_id = ? AND leave_type_id = ? AND year = ?", key.EmployeeID, key.LeaveTypeID, key.Year)
	}
}

func (r *repository) FindByKey(ctx context.Context, key Key) (*Balance, error) {
	var b Balance
	if err := r.db.WithContext(ctx).Scopes(byKey(key)).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByKeyForUpdate holds the row lock until the transaction ends.
func (r *repository) FindByKeyForUpdate(ctx context.Context, key Key) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(byKey(key)).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListByEmployeeYear(ctx context.Context, employeeID uint, year int) ([]Balance, error) {
	var bs []Balance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		Order("leave_type_id ASC").
		Find(&bs).Error
	return bs, err
}

// CreateMissing inserts the rows whose key does not exist yet and reports
// how many were inserted. Existing rows are never touched.
func (r *repository) CreateMissing(ctx context.Context, balances []Balance) (int64, error) {
	if len(balances) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "leave_type_id"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(&balances)
	return res.RowsAffected, res.Error
}

func (r *repository) Update(ctx context.Context, b *Balance) error {
	return r.db.WithContext(ctx).
		Model(b).
		Select("total_days", "used_days", "pending_days", "carry_forward_days", "updated_at").
		Updates(b).Error
}
