package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedCredential inserts a credential at the given pool position.
// Returns the filled domain.Credential including the generated secret.
func SeedCredential(t *testing.T, pool *pgxpool.Pool, position int) domain.Credential {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	cred := domain.Credential{
		ID:        uuid.New(),
		Name:      "key-" + suffix,
		Secret:    "sk-test-secret-" + suffix,
		Position:  position,
		CreatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO credentials (id, name, secret, position, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		cred.ID, cred.Name, cred.Secret, cred.Position, cred.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCredential insert: %v", err)
	}

	return cred
}

// SeedDeck creates a root-level deck with a unique name.
func SeedDeck(t *testing.T, pool *pgxpool.Pool) domain.Deck {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	deck := domain.Deck{
		ID:        uuid.New(),
		Name:      "Deck " + suffix,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO decks (id, parent_id, name, created_at, updated_at)
		 VALUES ($1, NULL, $2, $3, $4)`,
		deck.ID, deck.Name, deck.CreatedAt, deck.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDeck insert: %v", err)
	}

	return deck
}

// SeedWord inserts a word into the deck at the given position.
func SeedWord(t *testing.T, pool *pgxpool.Pool, deckID uuid.UUID, position int, term string) domain.Word {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	word := domain.Word{
		ID:        uuid.New(),
		DeckID:    deckID,
		Position:  position,
		Term:      term,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO words (id, deck_id, position, term, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		word.ID, word.DeckID, word.Position, word.Term, word.CreatedAt, word.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedWord insert: %v", err)
	}

	return word
}

// SeedHighlight inserts a highlight on page 1 of the given PDF.
func SeedHighlight(t *testing.T, pool *pgxpool.Pool, pdfID, text string) domain.Highlight {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	h := domain.Highlight{
		ID:        uuid.New(),
		PDFID:     pdfID,
		Page:      1,
		Rects:     []domain.HighlightRect{{X: 10, Y: 20, W: 100, H: 14}},
		Text:      text,
		Color:     "yellow",
		CreatedAt: now,
	}

	rects, err := json.Marshal(h.Rects)
	if err != nil {
		t.Fatalf("testhelper: SeedHighlight marshal rects: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO highlights (id, pdf_id, page, rects, text, color, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		h.ID, h.PDFID, h.Page, rects, h.Text, h.Color, h.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedHighlight insert: %v", err)
	}

	return h
}
