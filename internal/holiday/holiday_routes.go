package holiday

import (
	"go-hris-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	jwtSecret string,
) {
	holidays := r.Group("/holidays")
	holidays.Use(middleware.AuthMiddleware(jwtSecret))
	{
		holidays.GET("", middleware.RBACAuthorize(rbacService, "holiday", "read"), handler.GetByYear)
		holidays.POST("", middleware.RBACAuthorize(rbacService, "holiday", "create"), handler.Create)
	}
}
