package app

import (
	"context"
	"errors"

	"go-hris-leave/internal/events"
	"go-hris-leave/internal/messaging/kafka/consumer"
	"go-hris-leave/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer turns leave applied events into notifications until ctx is
// cancelled.
func RunConsumer(ctx context.Context, cfg *Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	reader := connection.NewKafkaReader(cfg.KafkaBroker, events.LeaveAppliedTopic, cfg.KafkaConsumerGroup)
	defer reader.Close()

	consumer.ConsumeLeaveApplied(ctx, reader, consumer.NewLogNotifier(logger), consumer.Options{
		RetryBackoff:    cfg.ConsumerRetryBackoff,
		MaxRetryBackoff: cfg.ConsumerMaxRetryBackoff,
	}, logger)

	logger.Info("consumer shutting down")
	return nil
}
