package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopadmin/backoffice/internal/infrastructure/cache"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"github.com/shopadmin/backoffice/internal/infrastructure/migration"
	"github.com/shopadmin/backoffice/internal/infrastructure/persistence"
	"github.com/shopadmin/backoffice/internal/infrastructure/persistence/models"
	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"github.com/shopadmin/backoffice/internal/interfaces/http/server"
	"github.com/shopadmin/backoffice/migrations"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

//	@title			Back-office API
//	@version		1.0
//	@description	Identity and role-based access control for the shop back office.

//	@contact.name	Back-office team

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// The log bridge needs a logger of its own, so the final logger is
	// rebuilt with the OTLP core once the provider exists.
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		if log, err = logger.New(logCfg, logProvider.ZapCore()); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting back-office API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.Telemetry.ServiceName, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, cfg.Log.Level, cfg.Database.SlowQuery)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.NewDBTracing(cfg.Telemetry, cfg.Database.Driver, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if err := telemetry.RegisterPoolMetrics(meterProvider.Meter("github.com/shopadmin/backoffice/db"), db.Stats); err != nil {
		log.Fatal("Failed to register database pool metrics", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if err := migrateSchema(db, cfg.Database.Driver, log); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	stores, err := cache.NewStoreFactory(cfg.Redis, cfg.Auth, cache.WithLogger(log)).CreateStores()
	if err != nil {
		log.Fatal("Failed to create token and throttle stores", zap.Error(err))
	}

	srv, err := server.New(server.Deps{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Stores:  stores,
		Meter:   meterProvider.Meter("github.com/shopadmin/backoffice"),
		Version: version,
	})
	if err != nil {
		log.Fatal("Failed to assemble server", zap.Error(err))
	}

	bootCtx, cancelBoot := context.WithTimeout(ctx, time.Minute)
	err = srv.Bootstrap(bootCtx)
	cancelBoot()
	if err != nil {
		log.Fatal("Failed to bootstrap permissions and administrator", zap.Error(err))
	}

	serveCtx, stopServe := context.WithCancel(ctx)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start(serveCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			log.Error("Server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopServe()

	if err := stores.Close(); err != nil {
		log.Error("Error closing stores", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited")
}

// migrateSchema applies the versioned SQL migrations on PostgreSQL. SQLite
// is a development convenience and is migrated from the gorm models instead.
func migrateSchema(db *persistence.Database, driver string, log *zap.Logger) error {
	if driver == persistence.DriverSQLite {
		return db.DB.AutoMigrate(models.All()...)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.Open(sqlDB, migration.Embedded(migrations.FS), log)
	if err != nil {
		return err
	}
	// Close would also close sqlDB, which is still in use
	return m.Up()
}
