package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectDB opens a pgx pool against connStr and pings it.
func ConnectDB(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	username   VARCHAR(32) PRIMARY KEY,
	salt       BYTEA NOT NULL,
	password   BYTEA NOT NULL,
	iterations INT NOT NULL,
	email      VARCHAR(128) NOT NULL,
	status     VARCHAR(32) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	username   VARCHAR(32) NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS sessions_username_idx ON sessions (username);

CREATE TABLE IF NOT EXISTS lobby_events (
	id         UUID PRIMARY KEY,
	action     VARCHAR(32) NOT NULL,
	player     VARCHAR(32) NOT NULL,
	game       VARCHAR(32),
	payload    JSONB,
	created_at TIMESTAMPTZ NOT NULL
);
`

// CreateTables creates the credential, session and lobby event tables if missing.
func CreateTables(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
