package contextutil

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	userIDKey     contextKey = "user_id"
	employeeIDKey contextKey = "employee_id"
	loggerKey     contextKey = "logger"
)

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

func GetUserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

func WithEmployeeID(ctx context.Context, eid string) context.Context {
	return context.WithValue(ctx, employeeIDKey, eid)
}

func GetEmployeeID(ctx context.Context) string {
	if eid, ok := ctx.Value(employeeIDKey).(string); ok {
		return eid
	}
	return ""
}

// WithLogger stores a request-scoped logger, usually one already decorated with request_id.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger never returns nil: it falls back to defaultLogger, then to a no-op logger.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	if defaultLogger != nil {
		return defaultLogger
	}
	return zap.NewNop()
}

type Metadata struct {
	RequestID  string
	UserID     string
	EmployeeID string
}

func ExtractMetadata(ctx context.Context) Metadata {
	return Metadata{
		RequestID:  GetRequestID(ctx),
		UserID:     GetUserID(ctx),
		EmployeeID: GetEmployeeID(ctx),
	}
}

// Fields renders the metadata as zap fields for manual logging.
func (m Metadata) Fields() []zap.Field {
	return []zap.Field{
		zap.String("request_id", m.RequestID),
		zap.String("user_id", m.UserID),
		zap.String("employee_id", m.EmployeeID),
	}
}
