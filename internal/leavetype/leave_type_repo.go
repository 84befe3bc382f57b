package leavetype

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_type_repo.go -destination=mock/leave_type_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAll(ctx context.Context) ([]LeaveType, error)
	FindActive(ctx context.Context) ([]LeaveType, error)
	FindByID(ctx context.Context, id uint) (*LeaveType, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, lt *LeaveType) error
	CreateBatch(ctx context.Context, lts []LeaveType) error
	Update(ctx context.Context, lt *LeaveType) error
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

func (r *repository) FindAll(ctx context.Context) ([]LeaveType, error) {
	var lts []LeaveType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&lts).Error
	return lts, err
}

func (r *repository) FindActive(ctx context.Context) ([]LeaveType, error) {
	var lts []LeaveType
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&lts).Error
	return lts, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*LeaveType, error) {
	var lt LeaveType
	if err := r.db.WithContext(ctx).First(&lt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lt, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&LeaveType{}).Count(&n).Error
	return n, err
}

func (r *repository) Create(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).Create(lt).Error
}

func (r *repository) CreateBatch(ctx context.Context, lts []LeaveType) error {
	if len(lts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lts).Error
}

func (r *repository) Update(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).Save(lt).Error
}
