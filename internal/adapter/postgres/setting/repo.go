// Package setting implements the key/value settings repository using
// PostgreSQL. The key pool keeps its durable state here: the active
// credential id and the per-key concurrency limit.
package setting

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hieunguyen/vocabdeck/internal/adapter/postgres"
	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// Repo provides settings persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new settings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getSQL = `SELECT value FROM settings WHERE key = $1`

const setSQL = `
INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

const unsetSQL = `DELETE FROM settings WHERE key = $1`

// Get returns the value for key.
// Returns domain.ErrNotFound when the key is absent.
func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var value string
	err := querier.QueryRow(ctx, getSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("setting %q: %w", key, domain.ErrNotFound)
		}
		return "", fmt.Errorf("setting %q: %w", key, err)
	}

	return value, nil
}

// Set upserts the value for key.
func (r *Repo) Set(ctx context.Context, key, value string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, setSQL, key, value); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}

	return nil
}

// Unset removes key. Removing an absent key is not an error.
func (r *Repo) Unset(ctx context.Context, key string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, unsetSQL, key); err != nil {
		return fmt.Errorf("unset setting %q: %w", key, err)
	}

	return nil
}
