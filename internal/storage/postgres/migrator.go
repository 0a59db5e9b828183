package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const migrationsDir = "sql/migrations"

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus — текущее состояние схемы.
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

// MigrateUp применяет up-миграции.
// steps=0 означает "применить все доступные".
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	return MigrateUp(ctx, s.cfg.DSN, steps)
}

// MigrateDown откатывает миграции.
// steps<=0 интерпретируется как 1 шаг для безопасного поведения.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	return MigrateDown(ctx, s.cfg.DSN, steps)
}

// MigrateUp применяет миграции к базе по DSN.
func MigrateUp(ctx context.Context, dsn string, steps int) error {
	return withMigrator(ctx, dsn, func(m *migrate.Migrate) error {
		if steps <= 0 {
			return m.Up()
		}
		return m.Steps(steps)
	})
}

// MigrateDown откатывает steps миграций (минимум одну).
func MigrateDown(ctx context.Context, dsn string, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return withMigrator(ctx, dsn, func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	})
}

// Status возвращает текущую версию схемы. Версия 0 означает, что миграции ещё не применялись.
func Status(ctx context.Context, dsn string) (MigrationStatus, error) {
	var status MigrationStatus
	err := withMigrator(ctx, dsn, func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return err
		}
		status = MigrationStatus{Version: version, Dirty: dirty}
		return nil
	})
	return status, err
}

// withMigrator открывает отдельный пул: migrate.Close закрывает переданную БД.
func withMigrator(ctx context.Context, dsn string, fn func(*migrate.Migrate) error) error {
	if dsn == "" {
		return fmt.Errorf("postgres dsn is empty")
	}

	src, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping migration connection: %w", err)
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("init migrator: %w", err)
	}
	defer m.Close()

	stop := context.AfterFunc(ctx, func() {
		select {
		case m.GracefulStop <- true:
		default:
		}
	})
	defer stop()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
