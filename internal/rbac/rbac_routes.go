package rbac

import (
	"go-hris-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, service Service, jwtSecret string) {
	group := r.Group("/rbac")
	group.Use(middleware.AuthMiddleware(jwtSecret))
	{
		group.POST("/enforce", middleware.RBACAuthorize(service, "role", "read"), handler.Enforce)
		group.GET("/me/roles", handler.MyRoles)
	}
}
