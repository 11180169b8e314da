package app

import (
	"context"
	"net/http"

	"go-hris-leave/internal/middleware"
	"go-hris-leave/internal/observability"
	"go-hris-leave/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type App struct {
	Router  *gin.Engine
	closers []func() error
}

// BuildApp connects the infrastructure and registers every module on a new
// router. Close releases the connections.
func BuildApp(ctx context.Context, cfg *Config) (*App, error) {
	logger := zap.L()

	gormDB, err := connection.OpenPostgres(ctx, cfg.Postgres(), cfg.ConnectRetry())
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	a := &App{closers: []func() error{sqlDB.Close}}

	if cfg.DBAutoMigrate {
		if err := Migrate(ctx, gormDB, logger); err != nil {
			a.Close()
			return nil, err
		}
	}

	infra := Infrastructure{DB: sqlDB, GormDB: gormDB}
	if cfg.RedisAddr != "" {
		client, err := connection.OpenRedis(ctx, cfg.RedisAddr, cfg.ConnectRetry())
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		infra.Redis = client
	} else {
		logger.Warn("REDIS_ADDR not set, running without cache, idempotency and apply lock")
	}

	a.Router = NewRouter(cfg)
	metrics := observability.NewMetrics()
	a.Router.Use(metrics.Middleware())
	a.Router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if err := registerModules(a.Router, cfg, infra, metrics, logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// NewRouter builds the engine with the middleware shared by every route.
func NewRouter(cfg *Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.ContextLogger(zap.L()),
		middleware.RateLimitByIP(cfg.IPRate(), cfg.IPRateBurst),
	)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			zap.L().Warn("close failed", zap.Error(err))
		}
	}
}
