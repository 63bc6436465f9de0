// Package middleware provides the gin middleware of the back-office API:
// the authentication and authorization gates plus request plumbing.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds caller-supplied request ids
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider (optional)
	TracerProvider trace.TracerProvider
}

// DefaultTracingConfig returns default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "backoffice",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin. Server spans are named after the route
// pattern; SpanStatus and Authenticate add the request and user attributes.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// TraceIDHeader carries the trace id back to the caller for support requests
const TraceIDHeader = "X-Trace-ID"

// SpanStatus tags the current span with the request id, echoes the trace id
// and, once the handlers have run, marks error responses. Register it right
// after Tracing so it executes inside the otelgin span.
func SpanStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := telemetry.GetTraceID(c.Request.Context()); id != "" {
			c.Header(TraceIDHeader, id)
		}
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		if requestID := getRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.SetStatus(codes.Error, statusDescription(status))
	}
}

func statusDescription(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Forbidden"
	case status == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}

// getRequestID returns the id assigned by RequestID, falling back to a
// bounded copy of the inbound header
func getRequestID(c *gin.Context) string {
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDHeader)
	if len(id) > MaxRequestIDLength {
		return id[:MaxRequestIDLength]
	}
	return id
}
