package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans swaps the global provider for one backed by a span recorder.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartSpan(t *testing.T) {
	sr := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "event.publish",
		telemetry.KeyEventType.String("role.created"),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "event.publish", got.Name())
	assert.Equal(t, trace.SpanKindInternal, got.SpanKind())
	assert.Equal(t, telemetry.TracerName, got.InstrumentationScope().Name)
	assert.Contains(t, got.Attributes(), telemetry.KeyEventType.String("role.created"))
}

func TestStartServiceSpan(t *testing.T) {
	sr := recordSpans(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "auth", "refresh",
		telemetry.KeyUserID.String("u-1"),
	)
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, "auth.refresh", sr.Ended()[0].Name())
	assert.Equal(t, []attribute.KeyValue{telemetry.KeyUserID.String("u-1")}, sr.Ended()[0].Attributes())
}

func TestRecordErrorAndSetOK(t *testing.T) {
	sr := recordSpans(t)

	_, failed := telemetry.StartSpan(context.Background(), "failed")
	telemetry.RecordError(failed, errors.New("boom"))
	failed.End()

	_, ok := telemetry.StartSpan(context.Background(), "ok")
	telemetry.RecordError(ok, nil)
	telemetry.SetOK(ok)
	ok.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
	assert.Empty(t, spans[1].Events())
}

func TestHelpersTolerateNilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
	})
}

func TestGetTraceID(t *testing.T) {
	recordSpans(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "op")
	defer span.End()
	assert.Equal(t, span.SpanContext().TraceID().String(), telemetry.GetTraceID(ctx))

	child, childSpan := telemetry.StartSpan(ctx, "child")
	defer childSpan.End()
	assert.Equal(t, telemetry.GetTraceID(ctx), telemetry.GetTraceID(child))
}
