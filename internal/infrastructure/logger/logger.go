package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level, encoding and destination of the process logger.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr or a file path
	TimeFormat string // empty means RFC 3339 with milliseconds
}

// New builds the process logger. Every extra core, such as the OTLP log
// bridge, sees the same entries as the primary sink and nothing below the
// configured level.
func New(cfg *Config, extra ...zapcore.Core) (*zap.Logger, error) {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}
	floor := parseLevel(cfg.Level)

	cores := []zapcore.Core{zapcore.NewCore(encoderFor(cfg), sink, floor)}
	for _, c := range extra {
		cores = append(cores, &floorCore{Core: c, min: floor})
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Sync flushes buffered entries. Syncing a terminal returns EINVAL on some
// platforms, which callers ignore on shutdown.
func Sync(log *zap.Logger) error {
	return log.Sync()
}

// floorCore drops entries below min before they reach the wrapped core.
type floorCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *floorCore) Enabled(l zapcore.Level) bool {
	return l >= c.min && c.Core.Enabled(l)
}

func (c *floorCore) With(fields []zapcore.Field) zapcore.Core {
	return &floorCore{Core: c.Core.With(fields), min: c.min}
}

func (c *floorCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ent.Level < c.min {
		return ce
	}
	return c.Core.Check(ent, ce)
}

// parseLevel accepts zap's level names in any case plus "warning".
// Anything unrecognised logs at info.
func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil || s == "" {
		return zapcore.InfoLevel
	}
	return lvl
}

func encoderFor(cfg *Config) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	ec.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	if cfg.TimeFormat != "" {
		ec.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	}

	if strings.EqualFold(cfg.Format, "console") {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log output: %w", err)
	}
	return zapcore.AddSync(f), nil
}
