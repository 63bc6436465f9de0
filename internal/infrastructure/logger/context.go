package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

// Request-scoped values carried on context.Context. The HTTP middleware sets
// them; services and the gorm logger read them back through For.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	RoleKey      contextKey = "role"
)

// WithRequestID records the request id on ctx and returns log tagged with it.
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return context.WithValue(ctx, RequestIDKey, requestID), log.With(zap.String("request_id", requestID))
}

// WithUser records the authenticated caller on ctx and returns log tagged
// with it. An empty role is left out of the fields.
func WithUser(ctx context.Context, log *zap.Logger, userID, role string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(context.WithValue(ctx, UserIDKey, userID), RoleKey, role)
	fields := []zap.Field{zap.String("user_id", userID)}
	if role != "" {
		fields = append(fields, zap.String("role", role))
	}
	return ctx, log.With(fields...)
}

// For returns base annotated with whatever request, user and trace ids ctx carries.
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetUserID(ctx); id != "" {
		fields = append(fields, zap.String("user_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	return fields
}

func GetRequestID(ctx context.Context) string { return value(ctx, RequestIDKey) }

func GetUserID(ctx context.Context) string { return value(ctx, UserIDKey) }

func GetRole(ctx context.Context) string { return value(ctx, RoleKey) }

// GetTraceID returns the id of the trace the span in ctx belongs to, or "".
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

func value(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}
