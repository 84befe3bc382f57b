package rbac

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authMW gin.HandlerFunc) {
	group := r.Group("/rbac")
	group.Use(authMW)
	{
		group.POST("/enforce", handler.Enforce)
		group.GET("/permissions/me", handler.MyPermissions)
	}
}
