package leavetype

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-hrms/internal/audit"
	leavetypeerrors "go-hrms/internal/leavetype/errors"
	"go-hrms/internal/shared/apperror"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const DefaultCacheTTL = 10 * time.Minute

//go:generate mockgen -source=leave_type_service.go -destination=mock/leave_type_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context) ([]LeaveTypeResponse, error)
	GetActive(ctx context.Context) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id uint) (LeaveTypeResponse, error)
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	Update(ctx context.Context, id uint, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	SeedDefaults(ctx context.Context) (int, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	audit    audit.Repository
	rdb      *redis.Client
	sf       *singleflight.Group
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewService wires the registry. rdb may be nil, in which case every read
// goes to the database.
func NewService(
	db *gorm.DB,
	repo Repository,
	auditRepo audit.Repository,
	rdb *redis.Client,
	cacheTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	return &service{
		db:       db,
		repo:     repo,
		audit:    auditRepo,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		cacheTTL: cacheTTL,
		logger:   l,
	}
}

func (s *service) GetAll(ctx context.Context) ([]LeaveTypeResponse, error) {
	lts, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all leave types failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(lts), nil
}

func (s *service) GetActive(ctx context.Context) ([]LeaveTypeResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, ActiveLeaveTypesKey).Result(); err == nil {
			var resp []LeaveTypeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(ActiveLeaveTypesKey, func() (interface{}, error) {
		lts, err := s.repo.FindActive(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(lts)

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, ActiveLeaveTypesKey, data, s.cacheTTL).Err(); err != nil {
					s.logger.Warn("cache active leave types failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Error("get active leave types failed", zap.Error(err))
		return nil, err
	}

	return v.([]LeaveTypeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*lt), nil
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return LeaveTypeResponse{}, leavetypeerrors.ErrEmptyLeaveTypeName
	}

	lt := &LeaveType{
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		RequiresApproval: true,
		IsPaid:           true,
		IsActive:         true,
		Color:            req.Color,
	}
	if req.DefaultDaysPerYear != nil {
		lt.DefaultDaysPerYear = *req.DefaultDaysPerYear
	}
	if req.RequiresApproval != nil {
		lt.RequiresApproval = *req.RequiresApproval
	}
	if req.IsPaid != nil {
		lt.IsPaid = *req.IsPaid
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, lt); err != nil {
			return mapRepositoryError(err)
		}
		return s.audit.WithTx(tx).Log(ctx, audit.Entry{
			Description: fmt.Sprintf("Leave type %q created with %d default days", lt.Name, lt.DefaultDaysPerYear),
			EntityType:  audit.EntityLeaveType,
			EntityID:    lt.ID,
		})
	})
	if err != nil {
		s.logger.Warn("create leave type failed", zap.String("name", name), zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("leave type created", zap.Uint("leave_type_id", lt.ID))
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, id uint, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	var updated LeaveType

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		lt, err := qtx.FindByID(ctx, id)
		if err != nil {
			return mapRepositoryError(err)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return leavetypeerrors.ErrEmptyLeaveTypeName
			}
			lt.Name = name
		}
		if req.Description != nil {
			lt.Description = strings.TrimSpace(*req.Description)
		}
		if req.DefaultDaysPerYear != nil {
			lt.DefaultDaysPerYear = *req.DefaultDaysPerYear
		}
		if req.RequiresApproval != nil {
			lt.RequiresApproval = *req.RequiresApproval
		}
		if req.IsPaid != nil {
			lt.IsPaid = *req.IsPaid
		}
		if req.IsActive != nil {
			lt.IsActive = *req.IsActive
		}
		if req.Color != nil {
			lt.Color = *req.Color
		}

		if err := qtx.Update(ctx, lt); err != nil {
			return mapRepositoryError(err)
		}

		updated = *lt
		return s.audit.WithTx(tx).Log(ctx, audit.Entry{
			Description: fmt.Sprintf("Leave type %q updated", lt.Name),
			EntityType:  audit.EntityLeaveType,
			EntityID:    lt.ID,
		})
	})
	if err != nil {
		s.logger.Warn("update leave type failed", zap.Uint("leave_type_id", id), zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("leave type updated", zap.Uint("leave_type_id", id))
	return mapToResponse(updated), nil
}

// SeedDefaults inserts the default catalogue when the registry is empty
// and returns the number of rows inserted.
func (s *service) SeedDefaults(ctx context.Context) (int, error) {
	var created int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		n, err := qtx.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		defaults := DefaultCatalogue()
		if err := qtx.CreateBatch(ctx, defaults); err != nil {
			return mapRepositoryError(err)
		}
		created = len(defaults)

		return s.audit.WithTx(tx).Log(ctx, audit.Entry{
			Description: fmt.Sprintf("Seeded %d default leave types", created),
			EntityType:  audit.EntityLeaveType,
		})
	})
	if err != nil {
		s.logger.Error("seed leave types failed", zap.Error(err))
		return 0, apperror.OperationFailed(err)
	}

	if created > 0 {
		s.invalidateCache(ctx)
		s.logger.Info("leave types seeded", zap.Int("count", created))
	}
	return created, nil
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, ActiveLeaveTypesKey).Err(); err != nil {
		s.logger.Error("failed to invalidate leave type cache",
			zap.String("key", ActiveLeaveTypesKey),
			zap.Error(err),
		)
	}
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                 lt.ID,
		Name:               lt.Name,
		Description:        lt.Description,
		DefaultDaysPerYear: lt.DefaultDaysPerYear,
		RequiresApproval:   lt.RequiresApproval,
		IsPaid:             lt.IsPaid,
		IsActive:           lt.IsActive,
		Color:              lt.Color,
	}
}

func mapToListResponse(lts []LeaveType) []LeaveTypeResponse {
	res := make([]LeaveTypeResponse, len(lts))
	for i, lt := range lts {
		res[i] = mapToResponse(lt)
	}
	return res
}
