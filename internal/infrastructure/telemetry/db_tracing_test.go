package telemetry_test

import (
	"context"
	"testing"

	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   int `gorm:"primaryKey"`
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestDBTracing_DisabledIsNoop(t *testing.T) {
	db := openSQLite(t)
	cfg := config.TelemetryConfig{Enabled: true, DBTraceEnabled: false}

	require.NoError(t, telemetry.NewDBTracing(cfg, "sqlite", zaptest.NewLogger(t)).Register(db))
	assert.Nil(t, db.Callback().Query().Get("backoffice:before_query"))
}

func TestDBTracing_RecordsStatementSpans(t *testing.T) {
	sr := recordSpans(t)
	db := openSQLite(t)
	cfg := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}

	require.NoError(t, telemetry.NewDBTracing(cfg, "sqlite", zaptest.NewLogger(t)).Register(db))
	assert.NotNil(t, db.Callback().Query().Get("backoffice:before_query"))
	assert.NotNil(t, db.Callback().Create().Get("backoffice:after_create"))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).AutoMigrate(&tracedRow{}))
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{ID: 1, Name: "a"}).Error)

	var row tracedRow
	require.NoError(t, db.WithContext(ctx).First(&row, 1).Error)
	assert.Equal(t, "a", row.Name)

	assert.NotEmpty(t, sr.Ended())
}

func TestDBTracing_DoubleRegistrationFails(t *testing.T) {
	recordSpans(t)
	db := openSQLite(t)
	plugin := telemetry.NewDBTracing(config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}, "sqlite", zaptest.NewLogger(t))

	require.NoError(t, plugin.Register(db))
	assert.Error(t, plugin.Register(db), "gorm rejects a second plugin with the same name")
}
