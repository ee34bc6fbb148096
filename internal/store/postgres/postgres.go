// Package postgres is the primary storage tier: a networked PostgreSQL
// database holding both logical stores. Availability is not assumed; every
// caller goes through the fallback composition in package store, which
// absorbs failures here into the local tier.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"mindfulmate-backend/internal/store/postgres/migrations"
)

// Store implements store.AuthStore and store.MemoryStore on PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to the database and runs migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, s.db, ".")
}
