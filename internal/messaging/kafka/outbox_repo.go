package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the delivery state of an outbox row.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
	// StatusDead rows ran out of attempts and are never claimed again.
	StatusDead Status = "DEAD"
)

const (
	DefaultMaxAttempts = 8
	maxBackoffSeconds  = 300
	maxErrorLength     = 500
)

// OutboxEvent is a message waiting in outbox_events to be relayed to Kafka.
type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        Status
	Attempts      int
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock
type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Enqueue(ctx context.Context, event OutboxEvent) error
	// Claim leases up to limit deliverable rows. A leased row is invisible to
	// other relays until the lease runs out or it is acked or nacked.
	Claim(ctx context.Context, limit int, lease time.Duration) ([]OutboxEvent, error)
	Ack(ctx context.Context, id string) error
	// Nack records a failed delivery and returns the row's new status.
	Nack(ctx context.Context, id string, reason string, maxAttempts int) (Status, error)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) conn() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const enqueueQuery = `
INSERT INTO outbox_events (id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)`

func (r *outboxRepository) Enqueue(ctx context.Context, event OutboxEvent) error {
	if event.Status == "" {
		event.Status = StatusPending
	}
	if err := event.Validate(); err != nil {
		return err
	}

	_, err := r.conn().ExecContext(ctx, enqueueQuery,
		event.ID, event.RequestID, event.AggregateType, event.AggregateID,
		event.EventType, event.Topic, event.Payload, string(event.Status),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", event.EventType, err)
	}
	return nil
}

const claimQuery = `
UPDATE outbox_events o
SET next_retry_at = NOW() + make_interval(secs => $3), updated_at = NOW()
FROM (
	SELECT id FROM outbox_events
	WHERE status IN ($1, $2) AND (next_retry_at IS NULL OR next_retry_at <= NOW())
	ORDER BY created_at
	LIMIT $4
	FOR UPDATE SKIP LOCKED
) picked
WHERE o.id = picked.id
RETURNING o.id::text, COALESCE(o.request_id, ''), o.aggregate_type, o.aggregate_id,
	o.event_type, o.topic, o.payload, o.status, o.retry_count`

func (r *outboxRepository) Claim(ctx context.Context, limit int, lease time.Duration) ([]OutboxEvent, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.conn().QueryContext(ctx, claimQuery,
		string(StatusPending), string(StatusFailed), lease.Seconds(), limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox events: %w", err)
	}
	defer rows.Close()

	var claimed []OutboxEvent
	for rows.Next() {
		var (
			e      OutboxEvent
			status string
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.AggregateType, &e.AggregateID,
			&e.EventType, &e.Topic, &e.Payload, &status, &e.Attempts); err != nil {
			return nil, err
		}
		e.Status = Status(status)
		claimed = append(claimed, e)
	}
	return claimed, rows.Err()
}

const ackQuery = `
UPDATE outbox_events
SET status = $2, processed_at = NOW(), next_retry_at = NULL, error_message = NULL, updated_at = NOW()
WHERE id = $1`

func (r *outboxRepository) Ack(ctx context.Context, id string) error {
	_, err := r.conn().ExecContext(ctx, ackQuery, id, string(StatusSent))
	return err
}

// Retry delay doubles per attempt and is capped at maxBackoffSeconds.
const nackQuery = `
UPDATE outbox_events
SET retry_count = retry_count + 1,
	status = CASE WHEN retry_count + 1 >= $4 THEN $3 ELSE $2 END,
	error_message = LEFT($5, $6),
	next_retry_at = NOW() + LEAST(POWER(2, retry_count), $7) * INTERVAL '1 second',
	updated_at = NOW()
WHERE id = $1
RETURNING status`

func (r *outboxRepository) Nack(ctx context.Context, id string, reason string, maxAttempts int) (Status, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var status string
	err := r.conn().QueryRowContext(ctx, nackQuery,
		id, string(StatusFailed), string(StatusDead), maxAttempts, reason, maxErrorLength, maxBackoffSeconds,
	).Scan(&status)
	if err != nil {
		return "", err
	}
	return Status(status), nil
}

// NewJSONEvent builds a pending outbox event with payload marshalled as JSON.
func NewJSONEvent(requestID, aggregateType, aggregateID, eventType, topic string, payload any) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        StatusPending,
	}, nil
}

var (
	errMissingID      = errors.New("outbox id is required")
	errMissingTopic   = errors.New("outbox topic is required")
	errMissingPayload = errors.New("outbox payload is required")
)

func (e OutboxEvent) Validate() error {
	switch {
	case e.ID == "":
		return errMissingID
	case e.Topic == "":
		return errMissingTopic
	case len(e.Payload) == 0:
		return errMissingPayload
	}
	if e.Status != StatusPending {
		return fmt.Errorf("outbox event must be enqueued as %s, got %q", StatusPending, e.Status)
	}
	return nil
}
