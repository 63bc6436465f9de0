package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func validSpanContext() trace.SpanContext {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
}

func TestWithRequestID(t *testing.T) {
	base, buf := newBufferLogger()

	ctx, l := WithRequestID(context.Background(), base, "req-123")
	l.Info("x")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestWithUser(t *testing.T) {
	base, buf := newBufferLogger()

	ctx, l := WithUser(context.Background(), base, "user-789", "Editor")
	l.Info("x")

	assert.Equal(t, "user-789", GetUserID(ctx))
	assert.Equal(t, "Editor", GetRole(ctx))
	assert.Contains(t, buf.String(), `"user_id":"user-789"`)
	assert.Contains(t, buf.String(), `"role":"Editor"`)

	buf.Reset()
	_, l = WithUser(context.Background(), base, "user-1", "")
	l.Info("y")
	assert.NotContains(t, buf.String(), `"role"`)
}

func TestGetters_Empty(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, 42)
	assert.Empty(t, GetRequestID(ctx), "non-string values are ignored")
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetRole(ctx))
	assert.Empty(t, GetTraceID(ctx))
}

func TestFor(t *testing.T) {
	base, buf := newBufferLogger()

	assert.Same(t, base, For(context.Background(), base), "nothing to add")

	ctx := trace.ContextWithSpanContext(context.Background(), validSpanContext())
	ctx, _ = WithRequestID(ctx, zap.NewNop(), "req-123")
	ctx, _ = WithUser(ctx, zap.NewNop(), "user-789", "Admin")

	For(ctx, base).Info("role updated", zap.String("role", "Viewer"))

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-123"`)
	assert.Contains(t, out, `"user_id":"user-789"`)
	assert.Contains(t, out, `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
	assert.Contains(t, out, `"role":"Viewer"`)
}
