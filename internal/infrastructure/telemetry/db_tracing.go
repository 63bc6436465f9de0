package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold marks statements slower than this on their span
const DefaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// DBTracing registers otelgorm on a gorm handle and decorates each statement
// span with the table, rows affected and a slow-query flag.
type DBTracing struct {
	enabled       bool
	fullSQL       bool
	dbSystem      string
	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewDBTracing creates the plugin from telemetry settings. dbSystem is the
// database driver name reported on spans.
func NewDBTracing(cfg config.TelemetryConfig, dbSystem string, logger *zap.Logger) *DBTracing {
	return &DBTracing{
		enabled:       cfg.Enabled && cfg.DBTraceEnabled,
		fullSQL:       cfg.DBLogFullSQL,
		dbSystem:      dbSystem,
		slowThreshold: DefaultSlowQueryThreshold,
		logger:        logger,
	}
}

// Register installs otelgorm and the timing callbacks. It is a no-op when
// database tracing is disabled.
func (p *DBTracing) Register(db *gorm.DB) error {
	if !p.enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.dbSystem)}
	if !p.fullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.String("db_system", p.dbSystem),
		zap.Bool("full_sql", p.fullSQL),
	)
	return nil
}

// hookRegistrar is satisfied by the callback builders returned from gorm's
// Before and After.
type hookRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func (p *DBTracing) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		name string
		reg  hookRegistrar
		fn   func(*gorm.DB)
	}{
		{"backoffice:before_create", cb.Create().Before("gorm:create"), markQueryStart},
		{"backoffice:before_query", cb.Query().Before("gorm:query"), markQueryStart},
		{"backoffice:before_update", cb.Update().Before("gorm:update"), markQueryStart},
		{"backoffice:before_delete", cb.Delete().Before("gorm:delete"), markQueryStart},
		{"backoffice:before_row", cb.Row().Before("gorm:row"), markQueryStart},
		{"backoffice:before_raw", cb.Raw().Before("gorm:raw"), markQueryStart},
		{"backoffice:after_create", cb.Create().After("gorm:create"), p.annotateSpan},
		{"backoffice:after_query", cb.Query().After("gorm:query"), p.annotateSpan},
		{"backoffice:after_update", cb.Update().After("gorm:update"), p.annotateSpan},
		{"backoffice:after_delete", cb.Delete().After("gorm:delete"), p.annotateSpan},
		{"backoffice:after_row", cb.Row().After("gorm:row"), p.annotateSpan},
		{"backoffice:after_raw", cb.Raw().After("gorm:raw"), p.annotateSpan},
	}
	for _, h := range hooks {
		if err := h.reg.Register(h.name, h.fn); err != nil {
			return err
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracing) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.slowThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
