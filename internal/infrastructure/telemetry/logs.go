package telemetry

import (
	"context"
	"fmt"

	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerProvider ships zap entries to the collector as OTLP log records.
type LoggerProvider struct {
	sdk   *sdklog.LoggerProvider
	log   *zap.Logger
	scope string
}

// NewLoggerProvider starts OTLP log export when cfg.LogsEnabled is set.
// log is the bootstrap logger; it reports lifecycle only and is never
// bridged itself.
func NewLoggerProvider(ctx context.Context, cfg config.TelemetryConfig, log *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{log: log, scope: cfg.ServiceName}
	if !cfg.LogsEnabled {
		log.Info("OTLP log export disabled")
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP log exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	lp.sdk = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.sdk)
	log.Info("OTLP log export enabled", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return lp, nil
}

// ZapCore is meant as an extra core for logger.New, which applies the
// configured level to it. It is a no-op core while export is off.
func (lp *LoggerProvider) ZapCore() zapcore.Core {
	if lp == nil || lp.sdk == nil {
		return zapcore.NewNopCore()
	}
	return otelzap.NewCore(lp.scope, otelzap.WithLoggerProvider(lp.sdk))
}

func (lp *LoggerProvider) IsEnabled() bool {
	return lp.sdk != nil
}

func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.sdk == nil {
		return nil
	}
	return shutdownWithTimeout(ctx, lp.log, "logger provider", lp.sdk.Shutdown)
}
