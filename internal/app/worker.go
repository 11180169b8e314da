package app

import (
	"context"
	"errors"

	"go-hris-leave/internal/messaging/kafka"
	"go-hris-leave/internal/messaging/kafka/producer"
	"go-hris-leave/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays pending outbox rows to Kafka until ctx is cancelled.
func RunWorker(ctx context.Context, cfg *Config) error {
	logger := zap.L().Named("app.worker")

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	gormDB, err := connection.OpenPostgres(ctx, cfg.Postgres(), cfg.ConnectRetry())
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.OpenKafkaWriter(ctx, cfg.KafkaBroker, cfg.ConnectRetry())
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	relay := producer.NewRelay(outboxRepo, kafkaWriter, producer.RelayOptions{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		Lease:        cfg.OutboxLease,
		MaxAttempts:  cfg.OutboxMaxAttempts,
	}, logger)
	relay.Run(ctx)

	logger.Info("worker shutting down")
	return nil
}
