package leavebalance

import (
	"net/http"
	"strconv"
	"time"

	leavebalanceerrors "go-hrms/internal/leavebalance/errors"
	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leavebalance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.handler")
	}
	return &Handler{service: service, logger: l, now: time.Now}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// queryYear reads ?year=, defaulting to the current calendar year.
func (h *Handler) queryYear(c *gin.Context) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return h.now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return 0, leavebalanceerrors.ErrInvalidYear
	}
	return year, nil
}

func parseUintParam(c *gin.Context, name string, invalid error) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, invalid
	}
	return uint(v), nil
}

// GetMine lists the caller's own balances.
func (h *Handler) GetMine(c *gin.Context) {
	employeeID, ok := middleware.EmployeeID(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}
	year, err := h.queryYear(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetEmployeeBalances(c.Request.Context(), employeeID, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByEmployee(c *gin.Context) {
	employeeID, err := parseUintParam(c, "id", leavebalanceerrors.ErrInvalidEmployeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	year, err := h.queryYear(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetEmployeeBalances(c.Request.Context(), employeeID, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetOne(c *gin.Context) {
	employeeID, err := parseUintParam(c, "id", leavebalanceerrors.ErrInvalidEmployeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	leaveTypeID, err := parseUintParam(c, "leaveTypeId", leavebalanceerrors.ErrInvalidLeaveTypeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	year, err := h.queryYear(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetBalance(c.Request.Context(), employeeID, leaveTypeID, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Initialize(c *gin.Context) {
	employeeID, err := parseUintParam(c, "id", leavebalanceerrors.ErrInvalidEmployeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req InitializeBalancesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, err.Error())
			return
		}
	}
	if req.Year == 0 {
		req.Year = h.now().Year()
	}

	resp, err := h.service.InitializeBalances(c.Request.Context(), employeeID, req.Year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created > 0 {
		status = http.StatusCreated
	}
	response.Success(c, status, resp, nil)
}
