package leave

import (
	"go-hris-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RouteOptions struct {
	// JWTSecret verifies bearer tokens.
	JWTSecret string
	// Redis backs idempotent replays of POST requests. Nil disables them.
	Redis redis.UniversalClient
	// ApplyRate limits applications per user. Zero disables the limit.
	ApplyRate  rate.Limit
	ApplyBurst int
}

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	opts RouteOptions,
) {
	apply := []gin.HandlerFunc{middleware.RBACAuthorize(rbacService, "leave", "create")}
	if opts.ApplyRate > 0 {
		apply = append(apply, middleware.RateLimitByUser(opts.ApplyRate, opts.ApplyBurst))
	}
	apply = append(apply, middleware.Idempotency(opts.Redis), handler.Apply)

	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware(opts.JWTSecret))
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetAll)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetById)
		requests.POST("", apply...)
	}
}
