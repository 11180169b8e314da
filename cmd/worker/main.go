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

	logger, err := app.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	ctx, stop := bootstrap.SignalContext()
	defer stop()

	if err := app.RunWorker(ctx, cfg); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
