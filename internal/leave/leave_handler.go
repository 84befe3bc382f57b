package leave

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	h.logger.Debug("leave request binding failed", zap.Error(err))
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, err.Error())
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, leaveerrors.ErrInvalidApplicationID
	}
	return uint(id), nil
}

// parseFilter reads ?status= and ?year=.
func parseFilter(c *gin.Context) (ListFilter, error) {
	var f ListFilter
	if raw := c.Query("status"); raw != "" {
		f.Status = Status(strings.ToUpper(raw))
		if !f.Status.Valid() {
			return ListFilter{}, leaveerrors.ErrInvalidStatusFilter
		}
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return ListFilter{}, apperror.InvalidField("year")
		}
		f.Year = year
	}
	return f, nil
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}

func (h *Handler) callerID(c *gin.Context) (uint, bool) {
	id, ok := middleware.EmployeeID(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
	}
	return id, ok
}

func (h *Handler) Apply(c *gin.Context) {
	employeeID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) CheckEligibility(c *gin.Context) {
	employeeID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.CheckEligibility(c.Request.Context(), employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, limit := pageParams(c)
	items, meta := response.Paginate(resp, page, limit)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetMine(c *gin.Context) {
	employeeID, ok := h.callerID(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByEmployee(c.Request.Context(), employeeID, filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, limit := pageParams(c)
	items, meta := response.Paginate(resp, page, limit)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetPending(c *gin.Context) {
	managerID, ok := h.callerID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetPendingForManager(c.Request.Context(), managerID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// bindReview accepts an empty body; comments are optional on approve.
func (h *Handler) bindReview(c *gin.Context) (ReviewLeaveRequest, bool) {
	var req ReviewLeaveRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return req, false
	}
	return req, true
}

func (h *Handler) Approve(c *gin.Context) {
	h.review(c, h.service.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.review(c, h.service.Reject)
}

func (h *Handler) review(c *gin.Context, do func(ctx context.Context, reviewerID, id uint, comments string) (LeaveResponse, error)) {
	reviewerID, ok := h.callerID(c)
	if !ok {
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	req, ok := h.bindReview(c)
	if !ok {
		return
	}

	resp, err := do(c.Request.Context(), reviewerID, id, req.Comments)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	employeeID, ok := h.callerID(c)
	if !ok {
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), employeeID, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
