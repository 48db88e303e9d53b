// Package credential implements the Credential repository using PostgreSQL.
// Rows carry the raw secrets; masking happens above in the key pool service.
package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hieunguyen/vocabdeck/internal/adapter/postgres"
	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// Repo provides credential persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new credential repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const listSQL = `
SELECT id, name, secret, position, created_at
FROM credentials
ORDER BY position`

const createSQL = `
INSERT INTO credentials (id, name, secret, position, created_at)
VALUES ($1, $2, $3, $4, $5)`

const deleteSQL = `DELETE FROM credentials WHERE id = $1`

// List returns all credentials ordered by pool position.
// Returns an empty slice (not nil) when the pool is empty.
func (r *Repo) List(ctx context.Context) ([]domain.Credential, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	result := []domain.Credential{}
	for rows.Next() {
		var c domain.Credential
		if err := rows.Scan(&c.ID, &c.Name, &c.Secret, &c.Position, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("list credentials: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	return result, nil
}

// Create inserts a new credential.
// Returns domain.ErrAlreadyExists if the name or position is taken.
func (r *Repo) Create(ctx context.Context, cred domain.Credential) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, createSQL,
		cred.ID, cred.Name, cred.Secret, cred.Position, cred.CreatedAt,
	)
	if err != nil {
		return mapError(err, "credential", cred.ID)
	}

	return nil
}

// Delete removes a credential.
// Returns domain.ErrNotFound when no row matched.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return mapError(err, "credential", id)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credential %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
