package notification

import (
	"context"
	"time"

	"go-hrms/internal/events"
	notificationerrors "go-hrms/internal/notification/errors"
	"go-hrms/internal/shared/apperror"

	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	HandleLeaveEvent(ctx context.Context, e events.LeaveLifecycleEvent) (int, error)
	ListForEmployee(ctx context.Context, employeeID uint, unreadOnly bool) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, employeeID, id uint) (NotificationResponse, error)
}

type service struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, now: time.Now, logger: l}
}

// HandleLeaveEvent stores the notifications of e. Redelivered events
// create nothing, so the count can be zero on success.
func (s *service) HandleLeaveEvent(ctx context.Context, e events.LeaveLifecycleEvent) (int, error) {
	ns, err := FromLeaveEvent(e)
	if err != nil {
		return 0, err
	}
	now := s.now().UTC()
	for i := range ns {
		ns[i].CreatedAt = now
	}

	n, err := s.repo.CreateMany(ctx, ns)
	if err != nil {
		s.logger.Error("store leave notifications failed",
			zap.String("event_type", e.EventType),
			zap.Uint("application_id", e.ApplicationID),
			zap.Error(err),
		)
		return 0, apperror.OperationFailed(err)
	}

	s.logger.Debug("leave notifications stored",
		zap.String("event_type", e.EventType),
		zap.Uint("application_id", e.ApplicationID),
		zap.Int64("created", n),
	)
	return int(n), nil
}

func (s *service) ListForEmployee(ctx context.Context, employeeID uint, unreadOnly bool) ([]NotificationResponse, error) {
	ns, err := s.repo.ListForEmployee(ctx, employeeID, unreadOnly)
	if err != nil {
		return nil, apperror.OperationFailed(err)
	}
	res := make([]NotificationResponse, len(ns))
	for i, n := range ns {
		res[i] = mapToResponse(n)
	}
	return res, nil
}

func (s *service) MarkRead(ctx context.Context, employeeID, id uint) (NotificationResponse, error) {
	rows, err := s.repo.MarkRead(ctx, id, employeeID, s.now().UTC())
	if err != nil {
		return NotificationResponse{}, apperror.OperationFailed(err)
	}
	if rows == 0 {
		return NotificationResponse{}, notificationerrors.ErrNotificationNotFound
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return NotificationResponse{}, err
	}
	return mapToResponse(*n), nil
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		ActionURL: n.ActionURL,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		v := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &v
	}
	return resp
}
