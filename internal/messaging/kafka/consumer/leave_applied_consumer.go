package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-hris-leave/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer loop needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type Options struct {
	// RetryBackoff is the first wait after a failed notification. It doubles
	// per failure up to MaxRetryBackoff.
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = time.Second
	}
	if o.MaxRetryBackoff < o.RetryBackoff {
		o.MaxRetryBackoff = max(o.RetryBackoff, time.Minute)
	}
	return o
}

// ConsumeLeaveApplied runs until ctx is cancelled. Undecodable messages are
// committed and skipped. A notifier failure is retried on the same message
// and no later offset is fetched or committed until it succeeds.
func ConsumeLeaveApplied(
	ctx context.Context,
	reader MessageReader,
	notifier Notifier,
	opts Options,
	logger *zap.Logger,
) {
	opts = opts.withDefaults()
	log := logger.Named("kafka.consumer.leave_applied")
	log.Info("leave applied consumer started")
	defer log.Info("leave applied consumer stopped")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("fetch leave applied message failed", zap.Error(err))
			continue
		}

		var event events.LeaveAppliedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave applied event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if !notifyUntilDone(ctx, notifier, event, msg.Offset, opts, log) {
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave applied message failed", zap.Error(err))
			continue
		}

		log.Debug("leave applied event handled",
			zap.String("leave_request_id", event.LeaveRequestID),
			zap.String("company_id", event.CompanyID),
		)
	}
}

// notifyUntilDone reports false when ctx ended before the notifier succeeded.
func notifyUntilDone(
	ctx context.Context,
	notifier Notifier,
	event events.LeaveAppliedEvent,
	offset int64,
	opts Options,
	log *zap.Logger,
) bool {
	backoff := opts.RetryBackoff
	for attempt := 1; ; attempt++ {
		err := notifier.NotifyLeaveApplied(ctx, event)
		if err == nil {
			return true
		}
		log.Error("notify leave applied failed",
			zap.String("leave_request_id", event.LeaveRequestID),
			zap.String("company_id", event.CompanyID),
			zap.Int64("offset", offset),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", backoff),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			return false
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		backoff = min(2*backoff, opts.MaxRetryBackoff)
	}
}
