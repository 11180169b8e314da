package producer

import (
	"context"
	"time"

	"go-hris-leave/internal/messaging/kafka"

	"go.uber.org/zap"
)

type RelayOptions struct {
	PollInterval time.Duration
	BatchSize    int
	Lease        time.Duration
	MaxAttempts  int
}

func (o RelayOptions) withDefaults() RelayOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = 3 * time.Second
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.Lease <= 0 {
		o.Lease = 30 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = kafka.DefaultMaxAttempts
	}
	return o
}

// BatchResult counts what happened to one claimed batch.
type BatchResult struct {
	Claimed int
	Sent    int
	Retried int
	Dead    int
}

// Relay moves outbox rows onto Kafka. Several relays may run against the same
// table since rows are leased on claim.
type Relay struct {
	repo   kafka.OutboxRepository
	writer MessageWriter
	opts   RelayOptions
	log    *zap.Logger
}

func NewRelay(repo kafka.OutboxRepository, writer MessageWriter, opts RelayOptions, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		repo:   repo,
		writer: writer,
		opts:   opts.withDefaults(),
		log:    logger.Named("kafka.producer.relay"),
	}
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// another claim instead of waiting for the next tick.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	r.log.Info("outbox relay started",
		zap.Duration("poll_interval", r.opts.PollInterval),
		zap.Int("batch_size", r.opts.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return
		case <-ticker.C:
		}

		for ctx.Err() == nil {
			res, err := r.RelayBatch(ctx)
			if err != nil {
				r.log.Error("relay outbox batch failed", zap.Error(err))
				break
			}
			if res.Claimed < r.opts.BatchSize {
				break
			}
		}
	}
}

// RelayBatch claims one batch and publishes it. Publish failures are recorded
// on the row and do not fail the batch.
func (r *Relay) RelayBatch(ctx context.Context) (BatchResult, error) {
	claimed, err := r.repo.Claim(ctx, r.opts.BatchSize, r.opts.Lease)
	if err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Claimed: len(claimed)}
	for _, event := range claimed {
		fields := []zap.Field{
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
			zap.Int("attempts", event.Attempts),
		}

		if err := publishEvent(ctx, r.writer, event); err != nil {
			status, nackErr := r.repo.Nack(ctx, event.ID, err.Error(), r.opts.MaxAttempts)
			if nackErr != nil {
				r.log.Error("record outbox failure failed", append(fields, zap.Error(nackErr))...)
				continue
			}
			if status == kafka.StatusDead {
				res.Dead++
				r.log.Error("outbox event dead lettered", append(fields, zap.Error(err))...)
				continue
			}
			res.Retried++
			r.log.Warn("publish outbox event failed", append(fields, zap.Error(err))...)
			continue
		}

		if err := r.repo.Ack(ctx, event.ID); err != nil {
			r.log.Error("ack outbox event failed", append(fields, zap.Error(err))...)
			continue
		}
		res.Sent++
		r.log.Debug("outbox event sent", fields...)
	}

	if res.Claimed > 0 {
		r.log.Info("outbox batch relayed",
			zap.Int("claimed", res.Claimed),
			zap.Int("sent", res.Sent),
			zap.Int("retried", res.Retried),
			zap.Int("dead", res.Dead),
		)
	}
	return res, nil
}
