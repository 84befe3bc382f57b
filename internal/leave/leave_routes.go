package leave

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts /leaves. writeGuards run before every mutating
// handler, after authorization.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	authMW gin.HandlerFunc,
	rbacService middleware.RBACService,
	writeGuards ...gin.HandlerFunc,
) {
	guarded := func(resource, action string, h gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{middleware.RBACAuthorize(rbacService, resource, action)}
		chain = append(chain, writeGuards...)
		return append(chain, h)
	}

	leaves := r.Group("/leaves")
	leaves.Use(authMW)
	{
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetAll)
		leaves.GET("/me", middleware.RBACAuthorize(rbacService, "leave", "read_own"), handler.GetMine)
		leaves.GET("/pending", middleware.RBACAuthorize(rbacService, "leave", "read_team"), handler.GetPending)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read_team"), handler.GetByID)

		leaves.POST("", guarded("leave", "apply", handler.Apply)...)
		leaves.POST("/eligibility", middleware.RBACAuthorize(rbacService, "leave", "apply"), handler.CheckEligibility)
		leaves.POST("/:id/approve", guarded("leave", "approve", handler.Approve)...)
		leaves.POST("/:id/reject", guarded("leave", "approve", handler.Reject)...)
		leaves.POST("/:id/cancel", guarded("leave", "cancel", handler.Cancel)...)
	}
}
