package audit

import (
	"context"

	"go-hrms/internal/shared/contextutil"

	"gorm.io/gorm"
)

// Logger records one audit line per completed mutation.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	Logger
	WithTx(tx *gorm.DB) Repository
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

// Log fills RequestID and ActorID from ctx when the caller left them empty.
func (r *repository) Log(ctx context.Context, entry Entry) error {
	enrich(ctx, &entry)
	return r.db.WithContext(ctx).Create(&entry).Error
}

func enrich(ctx context.Context, entry *Entry) {
	if entry.RequestID == "" {
		entry.RequestID = contextutil.GetRequestID(ctx)
	}
	if entry.ActorID == nil {
		if id, ok := contextutil.GetActorID(ctx); ok {
			entry.ActorID = &id
		}
	}
}
