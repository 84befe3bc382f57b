package leavebalance

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
	r.GET("/leave-balances", authMW, middleware.RBACAuthorize(rbacService, "leave_balance", "read_own"), handler.GetMine)

	employees := r.Group("/employees/:id/leave-balances")
	employees.Use(authMW)
	{
		employees.GET("", middleware.RBACAuthorize(rbacService, "leave_balance", "read"), handler.GetByEmployee)
		employees.GET("/:leaveTypeId", middleware.RBACAuthorize(rbacService, "leave_balance", "read"), handler.GetOne)
		employees.POST("/initialize", middleware.RBACAuthorize(rbacService, "leave_balance", "initialize"), handler.Initialize)
	}
}
