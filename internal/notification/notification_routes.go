package notification

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	authMW gin.HandlerFunc,
	rbacService middleware.RBACService,
) {
	ns := r.Group("/notifications")
	ns.Use(authMW, middleware.RBACAuthorize(rbacService, "notification", "read"))
	{
		ns.GET("", handler.List)
		ns.PATCH("/:id/read", handler.MarkRead)
	}
}
