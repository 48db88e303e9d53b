package deck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// ListWords returns the words of a deck ordered by position.
func (s *Service) ListWords(ctx context.Context, deckID uuid.UUID) ([]domain.Word, error) {
	if deckID == uuid.Nil {
		return nil, domain.NewValidationError("deck_id", "required")
	}

	// Surface ErrNotFound for a missing deck instead of an empty list.
	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		return nil, err
	}

	return s.words.ListByDeck(ctx, deckID)
}

// AddWord appends a word to the end of a deck.
func (s *Service) AddWord(ctx context.Context, input AddWordInput) (*domain.Word, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	word, err := s.words.Create(ctx, domain.Word{
		DeckID:         input.DeckID,
		Term:           domain.NormalizeText(input.Term),
		Meaning:        trimOrNil(input.Meaning),
		IPA:            trimOrNil(input.IPA),
		Pos:            trimOrNil(input.Pos),
		Example:        trimOrNil(input.Example),
		SourceSentence: trimOrNil(input.SourceSentence),
	})
	if err != nil {
		return nil, fmt.Errorf("add word: %w", err)
	}

	s.log.InfoContext(ctx, "word added",
		slog.String("deck_id", input.DeckID.String()),
		slog.String("word_id", word.ID.String()),
		slog.String("term", word.Term),
	)

	return word, nil
}

// UpdateWord applies partial updates to a word.
func (s *Service) UpdateWord(ctx context.Context, input UpdateWordInput) (*domain.Word, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	word, err := s.words.Update(ctx, input.WordID, domain.WordUpdateParams{
		Term:           trimOrNil(input.Term),
		Meaning:        input.Meaning,
		IPA:            input.IPA,
		Pos:            input.Pos,
		Example:        input.Example,
		SourceSentence: input.SourceSentence,
		Position:       input.Position,
	})
	if err != nil {
		return nil, fmt.Errorf("update word: %w", err)
	}

	return word, nil
}

// ApplyEnrichment stores an accepted AI meaning suggestion on the word and
// stamps the enrichment time.
func (s *Service) ApplyEnrichment(ctx context.Context, input ApplyEnrichmentInput) (*domain.Word, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	word, err := s.words.ApplyEnrichment(ctx, input.WordID, strings.TrimSpace(input.Meaning), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("apply enrichment: %w", err)
	}

	s.log.InfoContext(ctx, "word enriched",
		slog.String("word_id", word.ID.String()),
		slog.String("term", word.Term),
	)

	return word, nil
}

// DeleteWord removes a word from its deck.
func (s *Service) DeleteWord(ctx context.Context, wordID uuid.UUID) error {
	if wordID == uuid.Nil {
		return domain.NewValidationError("word_id", "required")
	}

	if err := s.words.Delete(ctx, wordID); err != nil {
		return fmt.Errorf("delete word: %w", err)
	}

	return nil
}
