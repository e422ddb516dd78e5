package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/weatherapp/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// Migrate creates the configured schema when missing and applies the embedded
// migrations inside it.
func Migrate(ctx context.Context, m *Manager, cfg Config, log *slog.Logger) error {
	if log == nil {
		log = logger.Noop()
	}
	log = log.With(logger.Component("migrate"))

	err := m.WithConn(ctx, func(ctx context.Context, conn *Conn) error {
		if cfg.Schema == "" {
			return nil
		}
		_, err := conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{cfg.Schema}.Sanitize())
		return err
	})
	if err != nil {
		if errors.Is(err, ErrPoolNotInitialized) {
			return errors.Join(ErrFailedToApplyMigrations, err)
		}
		return errors.Join(ErrFailedToCreateSchema, err)
	}

	m.mu.RLock()
	pool := m.pool
	m.mu.RUnlock()
	if pool == nil {
		return errors.Join(ErrFailedToApplyMigrations, ErrPoolNotInitialized)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration handle", logger.Error(err))
		}
	}(db)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: log})
	goose.SetTableName(migrationsTable(cfg))

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	log.InfoContext(ctx, "database migrations applied", slog.String("schema", cfg.Schema))
	return nil
}

func migrationsTable(cfg Config) string {
	table := cfg.MigrationsTable
	if table == "" {
		table = "schema_migrations"
	}
	if cfg.Schema == "" {
		return table
	}
	return cfg.Schema + "." + table
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	log *slog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...))
}
