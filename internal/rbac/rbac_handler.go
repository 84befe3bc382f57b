package rbac

import (
	"net/http"
	"strings"

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
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

// Enforce answers whether the caller's role may perform resource:action.
func (h *Handler) Enforce(c *gin.Context) {
	var req EnforceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, appErr.Status, appErr.Code, appErr.Message, err.Error())
		return
	}

	role := c.GetString(middleware.KeyRole)
	resource := strings.TrimSpace(req.Resource)
	action := strings.TrimSpace(req.Action)

	allowed, err := h.service.Enforce(role, resource, action)
	if err != nil {
		h.logger.Error("http enforce failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, EnforceResponse{
		Role:     role,
		Resource: resource,
		Action:   action,
		Allowed:  allowed,
	}, nil)
}

func (h *Handler) MyPermissions(c *gin.Context) {
	role := c.GetString(middleware.KeyRole)

	perms, err := h.service.PermissionsForRole(role)
	if err != nil {
		h.logger.Error("http list permissions failed", zap.String("role", role), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, perms, nil)
}
