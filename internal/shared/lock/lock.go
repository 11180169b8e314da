package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotObtained is returned when another holder owns the key.
var ErrNotObtained = errors.New("lock not obtained")

type Release func()

type Locker interface {
	Obtain(ctx context.Context, key string) (Release, error)
}

type redisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
	logger *zap.Logger
}

// NewRedisLocker returns a Locker backed by redislock. A nil client yields a
// no-op locker.
func NewRedisLocker(rdb redis.UniversalClient, ttl time.Duration, logger ...*zap.Logger) Locker {
	l := zap.L().Named("lock")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("lock")
	}
	if rdb == nil {
		l.Warn("redis not configured, advisory locks disabled")
		return noopLocker{}
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
		logger: l,
	}
}

func (r *redisLocker) Obtain(ctx context.Context, key string) (Release, error) {
	lk, err := r.client.Obtain(ctx, key, r.ttl, &redislock.Options{RetryStrategy: r.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		r.logger.Warn("could not obtain lock", zap.String("key", key))
		return nil, ErrNotObtained
	}
	if err != nil {
		r.logger.Error("error obtaining lock", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	return func() {
		// Release uses a fresh context: the request one may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lk.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			r.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

type noopLocker struct{}

func (noopLocker) Obtain(context.Context, string) (Release, error) {
	return func() {}, nil
}

// LeaveApplyKey serializes applications of one employee against one leave type.
func LeaveApplyKey(employeeID, leaveTypeID string) string {
	return fmt.Sprintf("lock:leave:apply:%s:%s", employeeID, leaveTypeID)
}
