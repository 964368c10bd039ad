package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/aduanatrack/core/internal/infrastructure/config"
	"github.com/aduanatrack/core/internal/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore persists the state document in a single keyed row of the
// app_state table. Still one opaque document, last-write-wins; postgres
// only adds durability over the file backend.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens a connection to postgres and verifies it.
func NewPostgresStore(cfg config.PostgresConfig) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Load returns the persisted document, or ports.ErrNoState when the
// state row does not exist.
func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var doc []byte
	err := s.db.GetContext(ctx, &doc, "SELECT document FROM app_state WHERE key = $1", StateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state row: %w", err)
	}
	return doc, nil
}

// Save upserts the state row.
func (s *PostgresStore) Save(ctx context.Context, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key)
		DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		StateKey, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save state row: %w", err)
	}
	return nil
}

// Ping checks database health.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// MigrateUp applies all pending migrations.
func (s *PostgresStore) MigrateUp() error {
	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back all migrations.
func (s *PostgresStore) MigrateDown() error {
	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current migration version.
func (s *PostgresStore) MigrateVersion() (uint, bool, error) {
	m, err := s.migrator()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

func (s *PostgresStore) migrator() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := migratepg.WithInstance(s.db.DB, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrator: %w", err)
	}
	return m, nil
}
