package employee

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uint) (*Employee, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*Employee, error)
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

func (r *repository) FindByID(ctx context.Context, id uint) (*Employee, error) {
	var emp Employee
	if err := r.db.WithContext(ctx).First(&emp, "id = ?", id).Error; err != nil {
		return nil, mapRepositoryError(err)
	}
	return &emp, nil
}

// FindByIDForUpdate locks the employee row until the surrounding
// transaction ends. Applications for one employee serialise on it.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uint) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&emp, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &emp, nil
}
