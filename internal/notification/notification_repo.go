package notification

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	CreateMany(ctx context.Context, ns []Notification) (int64, error)
	ListForEmployee(ctx context.Context, employeeID uint, unreadOnly bool) ([]Notification, error)
	FindByID(ctx context.Context, id uint) (*Notification, error)
	MarkRead(ctx context.Context, id, employeeID uint, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateMany skips rows whose event key already exists and reports how
// many were inserted.
func (r *repository) CreateMany(ctx context.Context, ns []Notification) (int64, error) {
	if len(ns) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_key"}},
			DoNothing: true,
		}).
		Create(&ns)
	return res.RowsAffected, res.Error
}

func (r *repository) ListForEmployee(ctx context.Context, employeeID uint, unreadOnly bool) ([]Notification, error) {
	var ns []Notification
	db := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}
	err := db.Order("created_at DESC").Find(&ns).Error
	return ns, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Notification, error) {
	var n Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, mapRepositoryError(err)
	}
	return &n, nil
}

// MarkRead only touches a notification owned by employeeID.
func (r *repository) MarkRead(ctx context.Context, id, employeeID uint, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND employee_id = ?", id, employeeID).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}
