// Package telemetry wires OpenTelemetry traces, metrics and logs plus Pyroscope
// profiling. Every provider degrades to a no-op when its switch is off, so
// callers never branch on whether telemetry is configured.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported on every exported resource
var ServiceVersion = "dev"

// shutdownTimeout bounds how long a provider may spend flushing on exit
const shutdownTimeout = 10 * time.Second

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// shutdownWithTimeout runs fn under the shared shutdown deadline and logs the outcome
func shutdownWithTimeout(ctx context.Context, logger *zap.Logger, what string, fn func(context.Context) error) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := fn(shutdownCtx); err != nil {
		logger.Error("Error shutting down "+what, zap.Error(err))
		return fmt.Errorf("failed to shutdown %s: %w", what, err)
	}
	logger.Info(what + " shutdown complete")
	return nil
}
