package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-hris-leave/internal/shared/apperror"
	"go-hris-leave/internal/shared/contextutil"
	"go-hris-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader   = "Idempotency-Key"
	idempotencyLockTTL  = 30 * time.Second
	IdempotencyCacheTTL = 24 * time.Hour

	ctxIdempotencyCacheKey = "idempotency_cache_key"
	ctxIdempotencyLockKey  = "idempotency_lock_key"
)

var ErrRequestInProgress = apperror.New(
	apperror.CodeConflict,
	"A request with this idempotency key is still being processed",
	http.StatusConflict,
)

// Idempotency replays a cached response for a repeated Idempotency-Key and
// rejects concurrent duplicates. Handlers store their result with
// StoreIdempotentResponse and release the lock with ReleaseIdempotencyLock.
func Idempotency(rdb redis.UniversalClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader(IdempotencyHeader)
		if rdb == nil || idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userID := c.GetString("user_id")
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		if val, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached json.RawMessage = []byte(val)
			c.Header("Idempotent-Replayed", "true")
			response.Success(c, http.StatusCreated, cached, nil)
			c.Abort()
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			contextutil.GetLogger(ctx, zap.L()).Warn("idempotency lock failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			abortWith(c, ErrRequestInProgress)
			return
		}

		c.Set(ctxIdempotencyCacheKey, cacheKey)
		c.Set(ctxIdempotencyLockKey, lockKey)

		c.Next()
	}
}

func StoreIdempotentResponse(c *gin.Context, rdb redis.UniversalClient, data any) {
	cacheKey := c.GetString(ctxIdempotencyCacheKey)
	if rdb == nil || cacheKey == "" {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := rdb.Set(c.Request.Context(), cacheKey, payload, IdempotencyCacheTTL).Err(); err != nil {
		contextutil.GetLogger(c.Request.Context(), zap.L()).Warn("idempotency cache write failed", zap.Error(err))
	}
}

func ReleaseIdempotencyLock(c *gin.Context, rdb redis.UniversalClient) {
	lockKey := c.GetString(ctxIdempotencyLockKey)
	if rdb == nil || lockKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = rdb.Del(ctx, lockKey).Err()
}
