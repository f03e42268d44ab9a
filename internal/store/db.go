package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// NewDB opens a Postgres connection pool and verifies connectivity.
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// InitSchema creates the legislation tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS legislation (
			id               TEXT PRIMARY KEY,
			source_type      TEXT NOT NULL,
			title            TEXT NOT NULL,
			summary          TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL DEFAULT 'pending',
			introduced_date  TIMESTAMPTZ,
			last_action_date TIMESTAMPTZ,
			source_url       TEXT NOT NULL DEFAULT '',
			extra_data       JSONB NOT NULL DEFAULT '{}',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_legislation_source_type ON legislation (source_type);
		CREATE INDEX IF NOT EXISTS idx_legislation_status ON legislation (status);
		CREATE INDEX IF NOT EXISTS idx_legislation_introduced_date ON legislation (introduced_date);

		CREATE TABLE IF NOT EXISTS legislative_actions (
			id             BIGSERIAL PRIMARY KEY,
			legislation_id TEXT NOT NULL REFERENCES legislation(id) ON DELETE CASCADE,
			action_date    TIMESTAMPTZ NOT NULL,
			action_type    TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			old_status     TEXT NOT NULL DEFAULT '',
			new_status     TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_actions_legislation_id ON legislative_actions (legislation_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}
