// Package word implements the Word repository using PostgreSQL.
// Words belong to a deck and are ordered by a per-deck position column.
// Partial updates are built dynamically with squirrel.
package word

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hieunguyen/vocabdeck/internal/adapter/postgres"
	"github.com/hieunguyen/vocabdeck/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides word persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new word repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const wordColumns = `id, deck_id, position, term, meaning, ipa, pos, example, source_sentence, enriched_at, created_at, updated_at`

const getByIDSQL = `
SELECT ` + wordColumns + `
FROM words
WHERE id = $1`

const listByDeckSQL = `
SELECT ` + wordColumns + `
FROM words
WHERE deck_id = $1
ORDER BY position, created_at`

const createSQL = `
INSERT INTO words (deck_id, position, term, meaning, ipa, pos, example, source_sentence)
VALUES ($1, (SELECT COALESCE(MAX(position), -1) + 1 FROM words WHERE deck_id = $1), $2, $3, $4, $5, $6, $7)
RETURNING ` + wordColumns

const applyEnrichmentSQL = `
UPDATE words
SET meaning = $2, enriched_at = $3, updated_at = now()
WHERE id = $1
RETURNING ` + wordColumns

const deleteSQL = `DELETE FROM words WHERE id = $1`

// GetByID returns a word by primary key.
// Returns domain.ErrNotFound if the word does not exist.
func (r *Repo) GetByID(ctx context.Context, wordID uuid.UUID) (*domain.Word, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	w, err := scanWord(querier.QueryRow(ctx, getByIDSQL, wordID))
	if err != nil {
		return nil, mapError(err, "word", wordID)
	}

	return w, nil
}

// ListByDeck returns all words of a deck ordered by position.
// Returns an empty slice (not nil) when the deck is empty.
func (r *Repo) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Word, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByDeckSQL, deckID)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// Create appends a word at the end of the deck and returns the persisted row.
// Returns domain.ErrNotFound if the deck does not exist.
func (r *Repo) Create(ctx context.Context, w domain.Word) (*domain.Word, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	created, err := scanWord(querier.QueryRow(ctx, createSQL,
		w.DeckID, w.Term, w.Meaning, w.IPA, w.Pos, w.Example, w.SourceSentence,
	))
	if err != nil {
		return nil, mapError(err, "word", uuid.Nil)
	}

	return created, nil
}

// Update applies partial updates using a dynamically built SET clause.
// For nullable columns a pointer to "" clears the value (sets NULL).
// Returns domain.ErrNotFound if the word does not exist.
func (r *Repo) Update(ctx context.Context, wordID uuid.UUID, params domain.WordUpdateParams) (*domain.Word, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	update := psql.Update("words").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": wordID}).
		Suffix("RETURNING " + wordColumns)

	if params.Term != nil {
		update = update.Set("term", *params.Term)
	}
	if params.Position != nil {
		update = update.Set("position", *params.Position)
	}
	for _, col := range []struct {
		name  string
		value *string
	}{
		{"meaning", params.Meaning},
		{"ipa", params.IPA},
		{"pos", params.Pos},
		{"example", params.Example},
		{"source_sentence", params.SourceSentence},
	} {
		if col.value == nil {
			continue
		}
		if *col.value == "" {
			update = update.Set(col.name, nil)
		} else {
			update = update.Set(col.name, *col.value)
		}
	}

	sql, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build word update: %w", err)
	}

	w, err := scanWord(querier.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(err, "word", wordID)
	}

	return w, nil
}

// ApplyEnrichment stores the accepted meaning and stamps enriched_at.
// Returns domain.ErrNotFound if the word does not exist.
func (r *Repo) ApplyEnrichment(ctx context.Context, wordID uuid.UUID, meaning string, enrichedAt time.Time) (*domain.Word, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	w, err := scanWord(querier.QueryRow(ctx, applyEnrichmentSQL, wordID, meaning, enrichedAt))
	if err != nil {
		return nil, mapError(err, "word", wordID)
	}

	return w, nil
}

// Delete removes a word.
// Returns domain.ErrNotFound if the word does not exist.
func (r *Repo) Delete(ctx context.Context, wordID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, wordID)
	if err != nil {
		return mapError(err, "word", wordID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("word %s: %w", wordID, domain.ErrNotFound)
	}

	return nil
}

// BulkInsert appends words to a deck using pgx.Batch, preserving the order
// of the input slice. Used by CSV import. Returns the number of inserted rows.
func (r *Repo) BulkInsert(ctx context.Context, deckID uuid.UUID, words []domain.Word) (int, error) {
	if len(words) == 0 {
		return 0, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	// Statements in a batch run sequentially on one connection, so each
	// MAX(position) sees the rows queued before it.
	batch := &pgx.Batch{}
	for _, w := range words {
		batch.Queue(
			`INSERT INTO words (deck_id, position, term, meaning, ipa, pos, example, source_sentence)
			 VALUES ($1, (SELECT COALESCE(MAX(position), -1) + 1 FROM words WHERE deck_id = $1), $2, $3, $4, $5, $6, $7)`,
			deckID, w.Term, w.Meaning, w.IPA, w.Pos, w.Example, w.SourceSentence,
		)
	}

	results := querier.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range words {
		tag, err := results.Exec()
		if err != nil {
			return inserted, mapError(err, "word", deckID)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanWord(row pgx.Row) (*domain.Word, error) {
	var w domain.Word
	err := row.Scan(
		&w.ID, &w.DeckID, &w.Position, &w.Term,
		&w.Meaning, &w.IPA, &w.Pos, &w.Example, &w.SourceSentence,
		&w.EnrichedAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanWords(rows pgx.Rows) ([]domain.Word, error) {
	result := []domain.Word{}
	for rows.Next() {
		var w domain.Word
		err := rows.Scan(
			&w.ID, &w.DeckID, &w.Position, &w.Term,
			&w.Meaning, &w.IPA, &w.Pos, &w.Example, &w.SourceSentence,
			&w.EnrichedAt, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan words: %w", err)
	}

	return result, nil
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
