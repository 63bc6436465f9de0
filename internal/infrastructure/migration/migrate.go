package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Source opens the set of migration files a Migrator applies.
type Source func() (source.Driver, error)

// Embedded reads migrations from fsys, normally migrations.FS.
func Embedded(fsys fs.FS) Source {
	return func() (source.Driver, error) {
		return iofs.New(fsys, ".")
	}
}

// Dir reads migrations from a directory on disk.
func Dir(path string) Source {
	return func() (source.Driver, error) {
		return (&file.File{}).Open("file://" + path)
	}
}

// Status is the schema version recorded in schema_migrations. Version 0
// means no migration has been applied.
type Status struct {
	Version uint
	Dirty   bool
}

// Migrator applies versioned SQL migrations to a PostgreSQL database.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// Open prepares a Migrator over db. Closing the Migrator closes db as well.
func Open(db *sql.DB, src Source, log *zap.Logger) (*Migrator, error) {
	files, err := src()
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("source", files, "postgres", target)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &Migrator{m: m, log: log.Named("migrate")}, nil
}

// apply runs one migrate operation. Having nothing to do is not an error.
func (mg *Migrator) apply(op string, run func() error, fields ...zap.Field) error {
	mg.log.Info("migrate "+op, fields...)
	err := run()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("schema already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	st, err := mg.Status()
	if err != nil {
		return err
	}
	mg.log.Info("schema migrated", zap.Uint("version", st.Version), zap.Bool("dirty", st.Dirty))
	return nil
}

// Up applies every pending migration.
func (mg *Migrator) Up() error {
	return mg.apply("up", mg.m.Up)
}

// Down rolls every migration back.
func (mg *Migrator) Down() error {
	return mg.apply("down", mg.m.Down)
}

// Steps applies n migrations forward, or -n backward when n is negative.
func (mg *Migrator) Steps(n int) error {
	return mg.apply("steps", func() error { return mg.m.Steps(n) }, zap.Int("steps", n))
}

// To migrates up or down to exactly version.
func (mg *Migrator) To(version uint) error {
	return mg.apply("to", func() error { return mg.m.Migrate(version) }, zap.Uint("target", version))
}

func (mg *Migrator) Status() (Status, error) {
	v, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("read schema version: %w", err)
	}
	return Status{Version: v, Dirty: dirty}, nil
}

// Force records version as applied and clean without running anything.
// It is the way out of a dirty schema after a failed migration was fixed by hand.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every table in the database, schema_migrations included.
func (mg *Migrator) Drop() error {
	mg.log.Warn("dropping all tables")
	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
