// Package deck implements the Deck repository using PostgreSQL.
// Decks form a folder tree via parent_id; deleting a deck cascades to its
// child decks and words.
package deck

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

// Repo provides deck persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new deck repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getByIDSQL = `
SELECT id, parent_id, name, created_at, updated_at
FROM decks
WHERE id = $1`

const listSQL = `
SELECT id, parent_id, name, created_at, updated_at
FROM decks
ORDER BY parent_id NULLS FIRST, name`

const createSQL = `
INSERT INTO decks (parent_id, name)
VALUES ($1, $2)
RETURNING id, parent_id, name, created_at, updated_at`

const updateSQL = `
UPDATE decks
SET parent_id = $2, name = $3, updated_at = now()
WHERE id = $1
RETURNING id, parent_id, name, created_at, updated_at`

const deleteSQL = `DELETE FROM decks WHERE id = $1`

// GetByID returns a deck by primary key.
// Returns domain.ErrNotFound if the deck does not exist.
func (r *Repo) GetByID(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	d, err := scanDeck(querier.QueryRow(ctx, getByIDSQL, deckID))
	if err != nil {
		return nil, mapError(err, "deck", deckID)
	}

	return d, nil
}

// List returns the whole deck tree as a flat slice, parents before children
// per level, siblings ordered by name. Returns an empty slice (not nil)
// when there are no decks.
func (r *Repo) List(ctx context.Context) ([]domain.Deck, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	result := []domain.Deck{}
	for rows.Next() {
		var d domain.Deck
		if err := rows.Scan(&d.ID, &d.ParentID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list decks: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	return result, nil
}

// Create inserts a new deck and returns the persisted domain.Deck.
// Returns domain.ErrAlreadyExists if a sibling with the same name exists,
// domain.ErrNotFound if the parent deck does not exist.
func (r *Repo) Create(ctx context.Context, parentID *uuid.UUID, name string) (*domain.Deck, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	d, err := scanDeck(querier.QueryRow(ctx, createSQL, parentID, name))
	if err != nil {
		return nil, mapError(err, "deck", uuid.Nil)
	}

	return d, nil
}

// Update applies partial updates to a deck's name and/or parent.
// Returns domain.ErrNotFound if the deck does not exist.
func (r *Repo) Update(ctx context.Context, deckID uuid.UUID, params domain.DeckUpdateParams) (*domain.Deck, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	// First get the current deck to apply partial updates.
	current, err := scanDeck(querier.QueryRow(ctx, getByIDSQL, deckID))
	if err != nil {
		return nil, mapError(err, "deck", deckID)
	}

	name := current.Name
	if params.Name != nil {
		name = *params.Name
	}

	parentID := current.ParentID
	switch {
	case params.ToRoot:
		parentID = nil
	case params.ParentID != nil:
		parentID = params.ParentID
	}

	updated, err := scanDeck(querier.QueryRow(ctx, updateSQL, deckID, parentID, name))
	if err != nil {
		return nil, mapError(err, "deck", deckID)
	}

	return updated, nil
}

// Delete removes a deck. CASCADE deletes child decks and their words.
// Returns domain.ErrNotFound if the deck does not exist.
func (r *Repo) Delete(ctx context.Context, deckID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, deckID)
	if err != nil {
		return mapError(err, "deck", deckID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deck %s: %w", deckID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanDeck(row pgx.Row) (*domain.Deck, error) {
	var d domain.Deck
	if err := row.Scan(&d.ID, &d.ParentID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
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
