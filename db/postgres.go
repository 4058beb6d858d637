package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis (
	id             UUID PRIMARY KEY,
	snippet_a      TEXT NOT NULL,
	snippet_b      TEXT NOT NULL,
	provider       TEXT NOT NULL,
	model_used     TEXT NOT NULL,
	prompt_version TEXT NOT NULL,
	result_text    TEXT NOT NULL,
	result_html    TEXT,
	scores         JSONB,
	shape          TEXT NOT NULL,
	raw            TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS analysis_created_at_idx ON analysis (created_at DESC);
`

func Connect(connStr string) (*sql.DB, error) {
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate creates the analysis table when it does not exist yet.
func Migrate(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
