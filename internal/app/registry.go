package app

import (
	"database/sql"

	"go-hris-leave/internal/entitlement"
	"go-hris-leave/internal/holiday"
	"go-hris-leave/internal/leave"
	"go-hris-leave/internal/messaging/kafka"
	"go-hris-leave/internal/observability"
	"go-hris-leave/internal/rbac"
	"go-hris-leave/internal/shared/counter"
	"go-hris-leave/internal/shared/lock"
	"go-hris-leave/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infrastructure holds the shared connections. Redis may be nil.
type Infrastructure struct {
	DB     *sql.DB
	GormDB *gorm.DB
	Redis  redis.UniversalClient
}

func registerModules(
	router *gin.Engine,
	cfg *Config,
	infra Infrastructure,
	metrics *observability.Metrics,
	logger *zap.Logger,
) error {
	weekend, err := cfg.WeekendDays()
	if err != nil {
		return err
	}

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(infra.GormDB)
	holidayRepo := holiday.NewRepository(infra.GormDB)
	workflowRepo := workflow.NewRepository(infra.GormDB)
	entitlementRepo := entitlement.NewRepository(infra.GormDB)
	leaveRepo := leave.NewRepository(infra.GormDB)
	counterRepo := counter.NewRepository(infra.GormDB)
	outboxRepo := kafka.NewOutboxRepository(infra.DB)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, cfg.RBACPolicyTTL, logger)

	// --- Services ---
	holidayService := holiday.NewService(holidayRepo, infra.Redis, logger)
	entitlementService := entitlement.NewService(entitlementRepo, logger)
	leaveService := leave.NewService(infra.DB, leaveRepo, leave.Dependencies{
		Entitlements: entitlementService,
		Holidays:     holidayService,
		Workflow:     workflow.NewEngine(workflowRepo, rbacService),
		Counter:      counterRepo,
		Locker:       lock.NewRedisLocker(infra.Redis, cfg.LeaveApplyLockTTL, logger),
		Hook:         leave.NewOutboxHook(outboxRepo),
		Metrics:      metrics,
		Config: leave.Config{
			WeekendDays:  weekend,
			AllowExceed:  cfg.LeaveAllowExceed,
			MaxRangeDays: cfg.LeaveMaxRangeDays,
		},
	}, logger)

	// --- Handlers ---
	holidayHandler := holiday.NewHandler(holidayService, logger)
	leaveHandler := leave.NewHandler(leaveService, infra.Redis, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		holiday.RegisterRoutes(api, holidayHandler, rbacService, cfg.JWTSecret)
		leave.RegisterRoutes(api, leaveHandler, rbacService, leave.RouteOptions{
			JWTSecret:  cfg.JWTSecret,
			Redis:      infra.Redis,
			ApplyRate:  cfg.ApplyRate(),
			ApplyBurst: cfg.ApplyRateBurst,
		})
		rbac.RegisterRoutes(api, rbacHandler, rbacService, cfg.JWTSecret)
	}

	return nil
}
