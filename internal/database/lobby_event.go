package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/lobbyd/internal/models"
)

// IsDataError reports whether err is Postgres refusing the values themselves
// (data exception or integrity violation) rather than a connection or server problem.
func IsDataError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")
}

// InsertLobbyEvents writes a batch of journal events in one transaction.
// Events whose ID already exists are skipped so a replayed batch is harmless.
func InsertLobbyEvents(ctx context.Context, pool *pgxpool.Pool, events []models.LobbyEvent) error {
	if len(events) == 0 {
		return nil
	}
	q := `
		INSERT INTO lobby_events (id, action, player, game, payload, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, ev := range events {
			id, err := uuid.Parse(ev.ID)
			if err != nil {
				id = uuid.New()
			}
			var payload []byte
			if len(ev.Payload) > 0 {
				payload, err = json.Marshal(ev.Payload)
				if err != nil {
					return fmt.Errorf("marshal payload of event %s: %w", ev.ID, err)
				}
			}
			created := time.UnixMilli(ev.Timestamp)
			if _, err := tx.Exec(ctx, q, id, ev.Action, ev.Player, ev.Game, payload, created); err != nil {
				return fmt.Errorf("insert event %s: %w", ev.ID, err)
			}
		}
		return nil
	})
}
