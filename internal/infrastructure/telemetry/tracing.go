package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every application span.
const TracerName = "github.com/shopadmin/backoffice"

// Span attributes set by the identity code paths.
var (
	KeyUserID          = attribute.Key("enduser.id")
	KeyRoleName        = attribute.Key("enduser.role")
	KeyAuthzPermission = attribute.Key("authz.permission")
	KeyAuthzDecision   = attribute.Key("authz.decision")
	KeyEventType       = attribute.Key("event.type")
	KeyAggregateType   = attribute.Key("event.aggregate_type")
)

// StartSpan opens an internal span on the global tracer provider. With no
// provider installed the span is a no-op. The caller must End it.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartServiceSpan names the span "<service>.<method>", e.g. "auth.login".
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, attrs...)
}

// RecordError attaches err to span as an exception event and fails the span.
// A nil err leaves the span untouched.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// GetTraceID returns the hex trace id carried by ctx, or "" outside a trace.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
