package leave

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, a *Application) error
	FindByID(ctx context.Context, id uint) (*Application, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*Application, error)
	Update(ctx context.Context, a *Application) error
	HasOverlapping(ctx context.Context, employeeID uint, start, end time.Time) (bool, error)
	ListByEmployee(ctx context.Context, employeeID uint, filter ListFilter) ([]Application, error)
	ListPendingForManager(ctx context.Context, managerID uint) ([]Application, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Application, error)
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

func (r *repository) Create(ctx context.Context, a *Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Application, error) {
	var a Application
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, mapRepositoryError(err)
	}
	return &a, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uint) (*Application, error) {
	var a Application
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &a, nil
}

func (r *repository) Update(ctx context.Context, a *Application) error {
	return r.db.WithContext(ctx).
		Model(a).
		Select("status", "reviewed_by_id", "reviewed_date", "review_comments", "updated_at").
		Updates(a).Error
}

// HasOverlapping treats both ranges as closed intervals, so two
// applications sharing a single day overlap.
func (r *repository) HasOverlapping(ctx context.Context, employeeID uint, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Application{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []Status{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func withFilter(filter ListFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("leave_applications.status = ?", filter.Status)
		}
		if filter.Year > 0 {
			db = db.Where("EXTRACT(YEAR FROM leave_applications.start_date) = ?", filter.Year)
		}
		return db
	}
}

func (r *repository) ListByEmployee(ctx context.Context, employeeID uint, filter ListFilter) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Scopes(withFilter(filter)).
		Where("employee_id = ?", employeeID).
		Order("applied_date DESC").
		Find(&apps).Error
	return apps, err
}

// ListPendingForManager returns pending applications of the employees whose
// line manager is managerID, oldest first.
func (r *repository) ListPendingForManager(ctx context.Context, managerID uint) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Joins("JOIN employees ON employees.id = leave_applications.employee_id").
		Where("employees.line_manager_id = ?", managerID).
		Where("leave_applications.status = ?", StatusPending).
		Order("leave_applications.applied_date ASC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Scopes(withFilter(filter)).
		Order("applied_date DESC").
		Find(&apps).Error
	return apps, err
}
