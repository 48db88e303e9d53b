// Package deck manages vocabulary decks and their word rows: the folder
// tree, CRUD, applying accepted AI enrichment, and CSV import/export.
package deck

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

type deckRepo interface {
	GetByID(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error)
	List(ctx context.Context) ([]domain.Deck, error)
	Create(ctx context.Context, parentID *uuid.UUID, name string) (*domain.Deck, error)
	Update(ctx context.Context, deckID uuid.UUID, params domain.DeckUpdateParams) (*domain.Deck, error)
	Delete(ctx context.Context, deckID uuid.UUID) error
}

type wordRepo interface {
	GetByID(ctx context.Context, wordID uuid.UUID) (*domain.Word, error)
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Word, error)
	Create(ctx context.Context, w domain.Word) (*domain.Word, error)
	Update(ctx context.Context, wordID uuid.UUID, params domain.WordUpdateParams) (*domain.Word, error)
	ApplyEnrichment(ctx context.Context, wordID uuid.UUID, meaning string, enrichedAt time.Time) (*domain.Word, error)
	Delete(ctx context.Context, wordID uuid.UUID) error
	BulkInsert(ctx context.Context, deckID uuid.UUID, words []domain.Word) (int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides deck and word management operations.
type Service struct {
	decks deckRepo
	words wordRepo
	tx    txManager
	log   *slog.Logger
}

// NewService creates a new Deck service.
func NewService(log *slog.Logger, decks deckRepo, words wordRepo, tx txManager) *Service {
	return &Service{
		decks: decks,
		words: words,
		tx:    tx,
		log:   log.With("service", "deck"),
	}
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
