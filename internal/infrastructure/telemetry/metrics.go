package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// DefaultExportInterval is the push period of the OTLP metric reader.
const DefaultExportInterval = time.Minute

// MeterProvider owns the metric exporter. While metrics are off, Meter
// hands out instruments from otel's global no-op provider.
type MeterProvider struct {
	sdk *sdkmetric.MeterProvider
	log *zap.Logger
}

func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, log *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{log: log}
	if !cfg.MetricsEnabled {
		log.Info("Metrics export disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP metric exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultExportInterval))
	mp.sdk = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp.sdk)

	log.Info("Metrics export enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("interval", DefaultExportInterval),
	)
	return mp, nil
}

func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.sdk == nil {
		return otel.Meter(name, opts...)
	}
	return mp.sdk.Meter(name, opts...)
}

func (mp *MeterProvider) IsEnabled() bool {
	return mp.sdk != nil
}

// Shutdown pushes a final collection and closes the exporter.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.sdk == nil {
		return nil
	}
	return shutdownWithTimeout(ctx, mp.log, "meter provider", mp.sdk.Shutdown)
}

// Counter counts events; each Inc adds one.
type Counter struct {
	counter metric.Int64Counter
}

func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram records durations in seconds.
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram uses the SDK's default buckets unless boundaries are given.
func NewHistogram(meter metric.Meter, name, description, unit string, boundaries ...float64) (*Histogram, error) {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(description),
		metric.WithUnit(unit),
	}
	if len(boundaries) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(boundaries...))
	}
	h, err := meter.Float64Histogram(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", name, err)
	}
	return &Histogram{histogram: h}, nil
}

func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// Metric attribute keys
var (
	AttrResult     = attribute.Key("result")
	AttrPermission = attribute.Key("permission")
	AttrDecision   = attribute.Key("decision")
	AttrReason     = attribute.Key("reason")

	AttrHTTPMethod      = attribute.Key("http.method")
	AttrHTTPRoute       = attribute.Key("http.route")
	AttrHTTPStatusClass = attribute.Key("http.status_class")
)

// FastDurationBuckets suit operations that finish in well under a second (seconds)
var FastDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// HTTPDurationBuckets suit request latencies (seconds)
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
