package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

const schema = `
CREATE TABLE IF NOT EXISTS tournament_state (
	id                   INTEGER PRIMARY KEY,
	participants         TEXT[]      NOT NULL,
	current_round        TEXT[]      NOT NULL,
	next_round           JSONB       NOT NULL DEFAULT '[]',
	assignments          JSONB,
	round_display        TEXT        NOT NULL DEFAULT '',
	current_round_number INTEGER     NOT NULL DEFAULT 0,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tournament_reports (
	number       INTEGER PRIMARY KEY,
	participants TEXT[]      NOT NULL,
	winner       TEXT        NOT NULL,
	log          TEXT        NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// One organizer drives the engine; a small pool is plenty.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database within %v: %w (close also failed: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Migrate creates the tournament tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
