package main

import (
	"log"

	"go-hris-leave/internal/app"
	"go-hris-leave/internal/bootstrap"
	"go-hris-leave/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	ctx, stop := bootstrap.SignalContext()
	defer stop()

	a, err := app.BuildApp(ctx, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer a.Close()

	err = bootstrap.StartHTTPServer(
		ctx,
		a.Router,
		bootstrap.ServerConfig{
			Port:            cfg.Port,
			ReadTimeout:     cfg.ReadTimeout,
			WriteTimeout:    cfg.WriteTimeout,
			IdleTimeout:     cfg.IdleTimeout,
			ShutdownTimeout: cfg.ShutdownTimeout,
		},
		bootstrap.NewStdoutAuditLogger(logger),
	)
	if err != nil {
		logger.Error("http server stopped with error", zap.Error(err))
	}
}
