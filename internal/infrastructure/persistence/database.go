package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Database is the gorm handle plus the pool underneath it.
type Database struct {
	DB *gorm.DB

	pool *sql.DB
}

// Option adjusts the gorm configuration before the connection is opened.
type Option func(*gorm.Config)

// WithLogger replaces gorm's default (silent) logger.
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

// NewDatabase connects with the configured driver and pings once.
//
// SQLite is limited to a single connection because each connection to
// ":memory:" opens its own empty database. Postgres gets the configured pool
// limits and prepared statement caching.
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		PrepareStmt:            cfg.Driver != DriverSQLite,
	}
	for _, opt := range opts {
		opt(gcfg)
	}

	gdb, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	db, err := wrap(gdb)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverSQLite {
		db.pool.SetMaxOpenConns(1)
	} else {
		db.pool.SetMaxOpenConns(cfg.MaxOpenConns)
		db.pool.SetMaxIdleConns(cfg.MaxIdleConns)
		db.pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		db.pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := db.pool.Ping(); err != nil {
		_ = db.pool.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}

func wrap(gdb *gorm.DB) (*Database, error) {
	pool, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm connection pool: %w", err)
	}
	return &Database{DB: gdb, pool: pool}, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		return postgres.Open(cfg.DSN()), nil
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return sqlite.Open(":memory:"), nil
		}
		return sqlite.Open(cfg.SQLitePath), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func (d *Database) Close() error { return d.pool.Close() }

// PingContext checks the connection within the caller's deadline.
func (d *Database) PingContext(ctx context.Context) error { return d.pool.PingContext(ctx) }

// Stats reports the connection pool counters; it feeds the db pool gauges.
func (d *Database) Stats() sql.DBStats { return d.pool.Stats() }
