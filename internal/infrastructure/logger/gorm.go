package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// sqlLogger routes gorm's statement log into zap. Successful statements go
// out at debug so they only show when the zap level allows it; failures and
// slow statements are always visible.
type sqlLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewGormLogger builds the gorm logger for the given textual level (the same
// values accepted by log.level, plus "silent"). A non-positive slow threshold
// turns slow query warnings off.
func NewGormLogger(log *zap.Logger, level string, slow time.Duration) gormlogger.Interface {
	return &sqlLogger{
		log:   log.Named("sql"),
		level: gormLevel(level),
		slow:  slow,
	}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "debug", "info":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	}
	return gormlogger.Warn
}

func (l *sqlLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *sqlLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Sugar().Infof(msg, args...)
	}
}

func (l *sqlLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Sugar().Warnf(msg, args...)
	}
}

func (l *sqlLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Sugar().Errorf(msg, args...)
	}
}

// Trace logs one executed statement. Record-not-found is a normal lookup
// miss for the repositories and is never reported.
func (l *sqlLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	elapsed := time.Since(begin)
	slow := l.slow > 0 && elapsed > l.slow

	var (
		lvl = zap.DebugLevel
		msg = "sql"
	)
	switch {
	case failed && l.level >= gormlogger.Error:
		lvl, msg = zap.ErrorLevel, "sql failed"
	case slow && l.level >= gormlogger.Warn:
		lvl, msg = zap.WarnLevel, "slow sql"
	case l.level < gormlogger.Info || err != nil:
		return
	}

	query, rows := fc()
	fields := append(contextFields(ctx),
		zap.String("sql", query),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	if failed {
		fields = append(fields, zap.Error(err))
	}
	if slow {
		fields = append(fields, zap.Duration("threshold", l.slow))
	}
	l.log.Log(lvl, msg, fields...)
}
