package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps each entity kind as a single jsonb document.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates the store and makes sure the backing table
// exists.
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	query := `
	CREATE TABLE IF NOT EXISTS domain_state (
		kind TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`

	if _, err := db.Exec(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to ensure domain_state table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Load(ctx context.Context, kind string) ([]byte, error) {
	query := `SELECT payload FROM domain_state WHERE kind = $1`

	var payload []byte
	err := s.db.QueryRow(ctx, query, kind).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}

	return payload, nil
}

func (s *PostgresStore) Save(ctx context.Context, kind string, payload []byte) error {
	query := `
	INSERT INTO domain_state (kind, payload, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (kind)
	DO UPDATE SET payload = $2, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, kind, payload); err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}

	return nil
}
