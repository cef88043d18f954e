// internal/database/credentials.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/lobbyd/internal/apperr"
	"github.com/jason-s-yu/lobbyd/internal/models"
)

const uniqueViolation = "23505"

// PostgresStore keeps credentials and session tokens in Postgres.
type PostgresStore struct {
	DB *pgxpool.Pool
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{DB: pool}
}

// InsertCredential inserts a new credential row.
func (s *PostgresStore) InsertCredential(ctx context.Context, cred *models.Credential) error {
	q := `INSERT INTO credentials (username, salt, password, iterations, email, status, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7)`

	err := pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			cred.Username, cred.Salt, cred.PasswordHash, cred.Iterations,
			cred.Email, cred.Status, cred.CreatedAt,
		)
		return execErr
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Wrap(apperr.ErrUsernameTaken, cred.Username)
		}
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

// FindCredential loads the credential for username.
func (s *PostgresStore) FindCredential(ctx context.Context, username string) (*models.Credential, error) {
	var c models.Credential
	q := `
	SELECT username, salt, password, iterations, email, status, created_at
	FROM credentials
	WHERE username=$1
	`
	err := s.DB.QueryRow(ctx, q, username).Scan(
		&c.Username, &c.Salt, &c.PasswordHash, &c.Iterations,
		&c.Email, &c.Status, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Wrap(apperr.ErrUnknownPlayer, username)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCredential hard deletes the credential row.
func (s *PostgresStore) DeleteCredential(ctx context.Context, username string) error {
	return pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM credentials WHERE username=$1`, username)
		return err
	})
}

// ReplaceSession drops every session of the username and inserts the new one
// in a single transaction.
func (s *PostgresStore) ReplaceSession(ctx context.Context, session models.SessionToken) error {
	err := pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE username=$1`, session.Username); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO sessions (token, username, expires_at) VALUES ($1, $2, $3)`,
			session.Token, session.Username, session.ExpiresAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}
	return nil
}

// FindSession loads the session row for token.
func (s *PostgresStore) FindSession(ctx context.Context, token string) (*models.SessionToken, error) {
	var st models.SessionToken
	err := s.DB.QueryRow(ctx,
		`SELECT token, username, expires_at FROM sessions WHERE token=$1`, token,
	).Scan(&st.Token, &st.Username, &st.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// DeleteSessions removes every session of username.
func (s *PostgresStore) DeleteSessions(ctx context.Context, username string) error {
	return pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM sessions WHERE username=$1`, username)
		return err
	})
}

// ClearAll empties the credential and session tables. Used by integration tests.
func (s *PostgresStore) ClearAll(ctx context.Context) error {
	return pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sessions`); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM credentials`)
		return err
	})
}
