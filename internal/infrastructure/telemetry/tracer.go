package telemetry

import (
	"context"
	"fmt"
	"sync"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// TracerProvider owns the span exporter. The zero provider (tracing off)
// leaves otel's global no-op tracer in place.
type TracerProvider struct {
	sdk          *sdktrace.TracerProvider
	log          *zap.Logger
	spanProfiles sync.Once
}

// NewTracerProvider exports spans over OTLP gRPC in batches and installs the
// provider and a W3C trace-context plus baggage propagator globally.
func NewTracerProvider(ctx context.Context, cfg config.TelemetryConfig, log *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{log: log}
	if !cfg.Enabled {
		log.Info("Tracing disabled")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP trace exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	tp.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(tp.sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	log.Info("Tracing enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
	)
	return tp, nil
}

// sampler follows the caller's sampling decision and samples new traces
// at ratio.
func sampler(ratio float64) sdktrace.Sampler {
	root := sdktrace.TraceIDRatioBased(ratio)
	switch {
	case ratio >= 1:
		root = sdktrace.AlwaysSample()
	case ratio <= 0:
		root = sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(root)
}

// EnableSpanProfiles tags CPU samples with the active span id so Pyroscope
// can link profiles to traces. It needs a running profiler and does
// nothing while tracing is off.
func (tp *TracerProvider) EnableSpanProfiles() {
	if tp.sdk == nil {
		return
	}
	tp.spanProfiles.Do(func() {
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp.sdk))
		tp.log.Info("Span profiles enabled")
	})
}

func (tp *TracerProvider) IsEnabled() bool {
	return tp.sdk != nil
}

// Shutdown exports buffered spans and closes the exporter.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.sdk == nil {
		return nil
	}
	return shutdownWithTimeout(ctx, tp.log, "tracer provider", tp.sdk.Shutdown)
}
