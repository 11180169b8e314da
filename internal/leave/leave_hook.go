package leave

import (
	"context"

	"go-hris-leave/internal/events"
	"go-hris-leave/internal/messaging/kafka"
)

// AppliedHook runs after an application commits. Its error is logged by the
// caller and never undoes the application.
type AppliedHook interface {
	OnLeaveApplied(ctx context.Context, event events.LeaveAppliedEvent) error
}

type noopHook struct{}

func (noopHook) OnLeaveApplied(context.Context, events.LeaveAppliedEvent) error { return nil }

// OutboxHook queues the event in the outbox for the relay worker.
type OutboxHook struct {
	outbox kafka.OutboxRepository
}

func NewOutboxHook(outbox kafka.OutboxRepository) *OutboxHook {
	return &OutboxHook{outbox: outbox}
}

func (h *OutboxHook) OnLeaveApplied(ctx context.Context, event events.LeaveAppliedEvent) error {
	outboxEvent, err := kafka.NewJSONEvent(
		event.RequestID,
		events.LeaveRequestAggregate,
		event.LeaveRequestID,
		events.LeaveAppliedEventType,
		events.LeaveAppliedTopic,
		event,
	)
	if err != nil {
		return err
	}
	return h.outbox.Enqueue(ctx, outboxEvent)
}
