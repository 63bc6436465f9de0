// Command migrate manages the PostgreSQL schema of the back-office service.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"github.com/shopadmin/backoffice/internal/infrastructure/migration"
	"github.com/shopadmin/backoffice/migrations"
	"go.uber.org/zap"
)

const usage = `Back-office database migration tool

Usage:
  migrate [flags] <command> [arguments]

Schema commands (need a reachable database):
  up                    apply all pending migrations
  down                  roll back all migrations
  step <n>              apply n migrations, negative n rolls back
  goto <version>        migrate up or down to version
  version               print the current version
  force <version>       mark version as applied (repairs a dirty schema)
  drop -confirm         drop every table (refused in production)

File commands:
  create <name> [desc]  write the next numbered up/down pair
  list                  list migration files

Flags:
`

// schemaCommand runs against an open migrator; args excludes the command name.
type schemaCommand struct {
	minArgs int
	hint    string
	run     func(m *migration.Migrator, cfg *config.Config, log *zap.Logger, args []string) error
}

var schemaCommands = map[string]schemaCommand{
	"up":   {run: func(m *migration.Migrator, _ *config.Config, _ *zap.Logger, _ []string) error { return m.Up() }},
	"down": {run: func(m *migration.Migrator, _ *config.Config, _ *zap.Logger, _ []string) error { return m.Down() }},
	"step": {minArgs: 1, hint: "step <n>", run: func(m *migration.Migrator, _ *config.Config, _ *zap.Logger, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	}},
	"goto": {minArgs: 1, hint: "goto <version>", run: func(m *migration.Migrator, _ *config.Config, _ *zap.Logger, args []string) error {
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.To(uint(v))
	}},
	"version": {run: func(m *migration.Migrator, _ *config.Config, log *zap.Logger, _ []string) error {
		st, err := m.Status()
		if err != nil {
			return err
		}
		log.Info("Current schema version", zap.Uint("version", st.Version), zap.Bool("dirty", st.Dirty))
		return nil
	}},
	"force": {minArgs: 1, hint: "force <version>", run: func(m *migration.Migrator, _ *config.Config, _ *zap.Logger, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(v)
	}},
	"drop": {minArgs: 1, hint: "drop -confirm", run: func(m *migration.Migrator, cfg *config.Config, _ *zap.Logger, args []string) error {
		if cfg.IsProduction() {
			return errors.New("drop is disabled in production")
		}
		if args[0] != "-confirm" && args[0] != "--confirm" {
			return errors.New("drop not confirmed")
		}
		return m.Drop()
	}},
}

func main() {
	dir := flag.String("path", "", "read migrations from this directory instead of the embedded set (default ./migrations for create and list)")
	level := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	name, args := flag.Arg(0), flag.Args()[1:]

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	switch name {
	case "create":
		err = createFile(*dir, args, log)
	case "list":
		err = listFiles(*dir)
	default:
		cmd, ok := schemaCommands[name]
		if !ok {
			flag.Usage()
			os.Exit(2)
		}
		if len(args) < cmd.minArgs {
			log.Fatal("Missing argument", zap.String("usage", "migrate "+cmd.hint))
		}
		err = runSchemaCommand(cmd, *dir, args, log)
	}
	if err != nil {
		log.Fatal("migrate "+name+" failed", zap.Error(err))
	}
}

func runSchemaCommand(cmd schemaCommand, dir string, args []string, log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("database.driver is %q: migrations target postgres only, sqlite schemas come from the gorm models", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	src := migration.Embedded(migrations.FS)
	if dir != "" {
		src = migration.Dir(dir)
	}
	m, err := migration.Open(db, src, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _ = m.Close() }()

	return cmd.run(m, cfg, log, args)
}

func createFile(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return errors.New("usage: migrate create <name> [description]")
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(orDefault(dir), args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up", mf.UpPath),
		zap.String("down", mf.DownPath),
	)
	return nil
}

func listFiles(dir string) error {
	names, err := migration.ListMigrations(orDefault(dir))
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func orDefault(dir string) string {
	if dir == "" {
		return "migrations"
	}
	return dir
}
