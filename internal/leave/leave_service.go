package leave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-hrms/internal/audit"
	"go-hrms/internal/employee"
	"go-hrms/internal/events"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/leavebalance"
	"go-hrms/internal/leavetype"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/workday"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const auditDateLayout = "02/01/2006"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, employeeID uint, req ApplyLeaveRequest) (LeaveResponse, error)
	CheckEligibility(ctx context.Context, employeeID uint, req ApplyLeaveRequest) (EligibilityResponse, error)
	Approve(ctx context.Context, reviewerID, id uint, comments string) (LeaveResponse, error)
	Reject(ctx context.Context, reviewerID, id uint, comments string) (LeaveResponse, error)
	Cancel(ctx context.Context, employeeID, id uint) (LeaveResponse, error)
	GetByID(ctx context.Context, id uint) (LeaveResponse, error)
	GetByEmployee(ctx context.Context, employeeID uint, filter ListFilter) ([]LeaveResponse, error)
	GetPendingForManager(ctx context.Context, managerID uint) ([]LeaveResponse, error)
	GetAll(ctx context.Context, filter ListFilter) ([]LeaveResponse, error)
}

// Repositories are the collaborators of the leave service. Outbox is
// optional; without it no lifecycle events are queued.
type Repositories struct {
	Leaves     Repository
	Employees  employee.Repository
	LeaveTypes leavetype.Repository
	Balances   leavebalance.Repository
	Audit      audit.Repository
	Outbox     kafka.OutboxRepository
}

type Option func(*service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger.Named("leave.service")
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	db          *gorm.DB
	repos       Repositories
	ledger      *leavebalance.Ledger
	eligibility *Eligibility
	now         func() time.Time
	logger      *zap.Logger
}

func NewService(db *gorm.DB, repos Repositories, opts ...Option) Service {
	s := &service{
		db:     db,
		repos:  repos,
		now:    time.Now,
		logger: zap.L().Named("leave.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = leavebalance.NewLedger(repos.Balances, repos.LeaveTypes, repos.Employees)
	s.eligibility = NewEligibility(repos.Leaves, repos.Employees, repos.LeaveTypes, s.ledger, s.now)
	return s
}

type dateRange struct {
	start, end time.Time
}

func parseRange(startRaw, endRaw string) (dateRange, error) {
	start, err := workday.ParseDate(startRaw)
	if err != nil {
		return dateRange{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := workday.ParseDate(endRaw)
	if err != nil {
		return dateRange{}, leaveerrors.ErrInvalidDateFormat
	}
	return dateRange{start: start, end: end}, nil
}

func (s *service) Apply(ctx context.Context, employeeID uint, req ApplyLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("apply leave requested",
		zap.Uint("employee_id", employeeID),
		zap.Uint("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	period, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	days := workday.CountBusinessDays(period.start, period.end)

	var app *Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subject, err := s.eligibility.WithTx(tx).Check(ctx, EligibilityRequest{
			EmployeeID:  employeeID,
			LeaveTypeID: req.LeaveTypeID,
			Days:        days,
			StartDate:   period.start,
			EndDate:     period.end,
		})
		if err != nil {
			return err
		}
		if !days.IsPositive() {
			return leaveerrors.ErrNoWorkingDays
		}

		ledger := s.ledger.WithTx(tx)
		year := period.start.Year()
		if _, err := ledger.EnsureInitialized(ctx, employeeID, year); err != nil {
			return err
		}
		balance, err := ledger.Lock(ctx, leavebalance.Key{EmployeeID: employeeID, LeaveTypeID: req.LeaveTypeID, Year: year})
		if err != nil {
			return err
		}
		if err := leavebalance.AdjustPending(balance, days); err != nil {
			return err
		}

		app = &Application{
			EmployeeID:             employeeID,
			LeaveTypeID:            req.LeaveTypeID,
			StartDate:              period.start,
			EndDate:                period.end,
			TotalDays:              days,
			Reason:                 strings.TrimSpace(req.Reason),
			ContactDuringLeave:     req.ContactDuringLeave,
			SupportingDocumentPath: req.SupportingDocumentPath,
			Status:                 StatusPending,
			AppliedDate:            s.now().UTC(),
		}
		if err := s.repos.Leaves.WithTx(tx).Create(ctx, app); err != nil {
			return err
		}
		if err := ledger.Save(ctx, balance); err != nil {
			return err
		}

		desc := fmt.Sprintf("%s applied for leave from %s to %s",
			subject.Employee.FullName,
			app.StartDate.Format(auditDateLayout),
			app.EndDate.Format(auditDateLayout),
		)
		if err := s.writeAudit(ctx, tx, app.ID, desc); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, events.LeaveSubmitted, app, subject.Employee, func(e *events.LeaveLifecycleEvent) {
			e.LineManagerID = subject.Employee.LineManagerID
			e.LeaveTypeName = subject.LeaveType.Name
		})
	})
	if err != nil {
		log.Warn("apply leave failed", zap.Uint("employee_id", employeeID), zap.Error(err))
		return LeaveResponse{}, toServiceError(err)
	}

	log.Info("leave application submitted",
		zap.Uint("application_id", app.ID),
		zap.Uint("employee_id", employeeID),
		zap.String("total_days", days.String()),
	)
	return mapToResponse(*app), nil
}

func (s *service) CheckEligibility(ctx context.Context, employeeID uint, req ApplyLeaveRequest) (EligibilityResponse, error) {
	period, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return EligibilityResponse{}, err
	}
	days := workday.CountBusinessDays(period.start, period.end)

	resp := EligibilityResponse{TotalDays: days, Eligible: true}
	subject, err := s.eligibility.Check(ctx, EligibilityRequest{
		EmployeeID:  employeeID,
		LeaveTypeID: req.LeaveTypeID,
		Days:        days,
		StartDate:   period.start,
		EndDate:     period.end,
	})
	if err == nil && !days.IsPositive() {
		err = leaveerrors.ErrNoWorkingDays
	}
	if err != nil {
		resp.Eligible = false
		resp.Reason = err.Error()
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			resp.Reason = appErr.Message
		}
		return resp, nil
	}
	resp.AvailableDays = &subject.Available
	return resp, nil
}

func (s *service) Approve(ctx context.Context, reviewerID, id uint, comments string) (LeaveResponse, error) {
	return s.review(ctx, reviewerID, id, StatusApproved, comments)
}

func (s *service) Reject(ctx context.Context, reviewerID, id uint, comments string) (LeaveResponse, error) {
	return s.review(ctx, reviewerID, id, StatusRejected, comments)
}

// review moves a pending application to Approved or Rejected and settles
// the pending days in the same transaction.
func (s *service) review(ctx context.Context, reviewerID, id uint, to Status, comments string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("review leave requested",
		zap.Uint("application_id", id),
		zap.Uint("reviewer_id", reviewerID),
		zap.String("to", string(to)),
	)

	var app *Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = s.repos.Leaves.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(app.Status, to) {
			return leaveerrors.ErrInvalidTransition
		}
		if to == StatusRejected && strings.TrimSpace(comments) == "" {
			return leaveerrors.ErrCommentsRequired
		}
		if app.EmployeeID == reviewerID {
			return leaveerrors.ErrSelfReview
		}

		employees := s.repos.Employees.WithTx(tx)
		reviewer, err := employees.FindByID(ctx, reviewerID)
		if err != nil {
			return err
		}
		applicant, err := employees.FindByID(ctx, app.EmployeeID)
		if err != nil {
			return err
		}

		ledger := s.ledger.WithTx(tx)
		balance, err := s.lockBalance(ctx, ledger, app)
		if err != nil {
			return err
		}
		if err := leavebalance.AdjustPending(balance, app.TotalDays.Neg()); err != nil {
			return err
		}
		if to == StatusApproved {
			if err := leavebalance.AdjustUsed(balance, app.TotalDays); err != nil {
				return err
			}
		}

		now := s.now().UTC()
		app.Status = to
		app.ReviewedByID = &reviewerID
		app.ReviewedDate = &now
		app.ReviewComments = optionalText(comments)

		if err := s.repos.Leaves.WithTx(tx).Update(ctx, app); err != nil {
			return err
		}
		if err := ledger.Save(ctx, balance); err != nil {
			return err
		}

		var desc, eventType string
		if to == StatusApproved {
			eventType = events.LeaveApproved
			desc = fmt.Sprintf("%s approved leave for %s from %s to %s",
				reviewer.FullName,
				applicant.FullName,
				app.StartDate.Format(auditDateLayout),
				app.EndDate.Format(auditDateLayout),
			)
		} else {
			eventType = events.LeaveRejected
			desc = fmt.Sprintf("%s rejected leave for %s. Reason: %s", reviewer.FullName, applicant.FullName, comments)
		}
		if err := s.writeAudit(ctx, tx, app.ID, desc); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, eventType, app, applicant, func(e *events.LeaveLifecycleEvent) {
			e.ReviewerID = &reviewerID
			e.ReviewComments = comments
		})
	})
	if err != nil {
		log.Warn("review leave failed",
			zap.Uint("application_id", id),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return LeaveResponse{}, toServiceError(err)
	}

	log.Info("leave application reviewed",
		zap.Uint("application_id", app.ID),
		zap.Uint("reviewer_id", reviewerID),
		zap.String("status", string(app.Status)),
	)
	return mapToResponse(*app), nil
}

// Cancel withdraws the caller's own pending or approved application and
// returns its days to the bucket they were held in.
func (s *service) Cancel(ctx context.Context, employeeID, id uint) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("cancel leave requested", zap.Uint("application_id", id), zap.Uint("employee_id", employeeID))

	var app *Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = s.repos.Leaves.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if app.EmployeeID != employeeID {
			return leaveerrors.ErrNotApplicant
		}
		if !CanTransition(app.Status, StatusCancelled) {
			return leaveerrors.ErrInvalidTransition
		}

		applicant, err := s.repos.Employees.WithTx(tx).FindByID(ctx, employeeID)
		if err != nil {
			return err
		}

		ledger := s.ledger.WithTx(tx)
		balance, err := s.lockBalance(ctx, ledger, app)
		if err != nil {
			return err
		}
		if app.Status == StatusApproved {
			err = leavebalance.AdjustUsed(balance, app.TotalDays.Neg())
		} else {
			err = leavebalance.AdjustPending(balance, app.TotalDays.Neg())
		}
		if err != nil {
			return err
		}

		now := s.now().UTC()
		app.Status = StatusCancelled
		app.ReviewedDate = &now

		if err := s.repos.Leaves.WithTx(tx).Update(ctx, app); err != nil {
			return err
		}
		if err := ledger.Save(ctx, balance); err != nil {
			return err
		}

		desc := fmt.Sprintf("%s cancelled leave from %s to %s",
			applicant.FullName,
			app.StartDate.Format(auditDateLayout),
			app.EndDate.Format(auditDateLayout),
		)
		if err := s.writeAudit(ctx, tx, app.ID, desc); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, events.LeaveCancelled, app, applicant, func(e *events.LeaveLifecycleEvent) {
			e.LineManagerID = applicant.LineManagerID
		})
	})
	if err != nil {
		log.Warn("cancel leave failed", zap.Uint("application_id", id), zap.Error(err))
		return LeaveResponse{}, toServiceError(err)
	}

	log.Info("leave application cancelled", zap.Uint("application_id", app.ID), zap.Uint("employee_id", employeeID))
	return mapToResponse(*app), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (LeaveResponse, error) {
	app, err := s.repos.Leaves.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, toServiceError(err)
	}
	return mapToResponse(*app), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID uint, filter ListFilter) ([]LeaveResponse, error) {
	apps, err := s.repos.Leaves.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		s.logger.Error("list employee leaves failed", zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, apperror.OperationFailed(err)
	}
	return mapToListResponse(apps), nil
}

func (s *service) GetPendingForManager(ctx context.Context, managerID uint) ([]LeaveResponse, error) {
	apps, err := s.repos.Leaves.ListPendingForManager(ctx, managerID)
	if err != nil {
		s.logger.Error("list pending leaves failed", zap.Uint("manager_id", managerID), zap.Error(err))
		return nil, apperror.OperationFailed(err)
	}
	return mapToListResponse(apps), nil
}

func (s *service) GetAll(ctx context.Context, filter ListFilter) ([]LeaveResponse, error) {
	apps, err := s.repos.Leaves.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list leaves failed", zap.Error(err))
		return nil, apperror.OperationFailed(err)
	}
	return mapToListResponse(apps), nil
}

// lockBalance reads the balance row an application draws from. A missing
// row at this point means the ledger is out of step with the application.
func (s *service) lockBalance(ctx context.Context, ledger *leavebalance.Ledger, app *Application) (*leavebalance.Balance, error) {
	b, err := ledger.Lock(ctx, leavebalance.Key{
		EmployeeID:  app.EmployeeID,
		LeaveTypeID: app.LeaveTypeID,
		Year:        app.LedgerYear(),
	})
	if err != nil {
		return nil, apperror.OperationFailed(err)
	}
	return b, nil
}

func (s *service) writeAudit(ctx context.Context, tx *gorm.DB, applicationID uint, desc string) error {
	return s.repos.Audit.WithTx(tx).Log(ctx, audit.Entry{
		Description: desc,
		EntityType:  audit.EntityLeaveApplication,
		EntityID:    applicationID,
	})
}

func (s *service) enqueue(
	ctx context.Context,
	tx *gorm.DB,
	eventType string,
	app *Application,
	applicant *employee.Employee,
	decorate func(e *events.LeaveLifecycleEvent),
) error {
	if s.repos.Outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.LeaveLifecycleEvent{
		EventType:     eventType,
		RequestID:     rid,
		ApplicationID: app.ID,
		EmployeeID:    app.EmployeeID,
		EmployeeName:  applicant.FullName,
		LeaveTypeID:   app.LeaveTypeID,
		StartDate:     app.StartDate.Format(workday.DateLayout),
		EndDate:       app.EndDate.Format(workday.DateLayout),
		TotalDays:     app.TotalDays.String(),
		Status:        string(app.Status),
		OccurredAt:    s.now().UTC(),
	}
	if decorate != nil {
		decorate(&event)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.repos.Outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: audit.EntityLeaveApplication,
		AggregateID:   strconv.FormatUint(uint64(app.ID), 10),
		EventType:     eventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// toServiceError keeps domain errors as they are and reports anything else
// as OPERATION_FAILED.
func toServiceError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.OperationFailed(err)
}

func optionalText(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func mapToResponse(a Application) LeaveResponse {
	resp := LeaveResponse{
		ID:                     a.ID,
		EmployeeID:             a.EmployeeID,
		LeaveTypeID:            a.LeaveTypeID,
		StartDate:              a.StartDate.Format(workday.DateLayout),
		EndDate:                a.EndDate.Format(workday.DateLayout),
		TotalDays:              a.TotalDays,
		Reason:                 a.Reason,
		ContactDuringLeave:     a.ContactDuringLeave,
		SupportingDocumentPath: a.SupportingDocumentPath,
		Status:                 a.Status,
		AppliedDate:            a.AppliedDate.Format(time.RFC3339),
		ReviewedByID:           a.ReviewedByID,
		ReviewComments:         a.ReviewComments,
	}
	if a.ReviewedDate != nil {
		v := a.ReviewedDate.Format(time.RFC3339)
		resp.ReviewedDate = &v
	}
	return resp
}

func mapToListResponse(apps []Application) []LeaveResponse {
	res := make([]LeaveResponse, len(apps))
	for i, a := range apps {
		res[i] = mapToResponse(a)
	}
	return res
}
