package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_turns (
	id             UUID PRIMARY KEY,
	sector         TEXT NOT NULL,
	intent         TEXT NOT NULL,
	outcome        TEXT NOT NULL,
	closed         BOOLEAN NOT NULL,
	missing_fields TEXT[] NOT NULL,
	entities       JSONB NOT NULL,
	message        TEXT NOT NULL,
	reply          TEXT NOT NULL,
	model_ok       BOOLEAN NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure chat_turns: %w", err)
	}
	return nil
}

func (r *repo) SaveTurn(ctx context.Context, t *TurnRecord) error {
	entities, err := json.Marshal(t.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}

	missing := make([]string, 0, len(t.Missing))
	for _, m := range t.Missing {
		missing = append(missing, string(m))
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO chat_turns (id, sector, intent, outcome, closed, missing_fields, entities, message, reply, model_ok)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		t.ID,
		string(t.Sector),
		string(t.Intent),
		string(t.Outcome),
		t.Closed,
		pq.Array(missing),
		string(entities),
		t.Message,
		t.Reply,
		t.ModelOK,
	)
	if err != nil {
		return fmt.Errorf("insert chat_turn: %w", err)
	}
	return nil
}

// NopRepo is used when DATABASE_URL is not set.
type NopRepo struct{}

func (NopRepo) SaveTurn(context.Context, *TurnRecord) error { return nil }
