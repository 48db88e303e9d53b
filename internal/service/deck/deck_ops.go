package deck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// GetDeck returns a deck by id.
func (s *Service) GetDeck(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error) {
	if deckID == uuid.Nil {
		return nil, domain.NewValidationError("deck_id", "required")
	}
	return s.decks.GetByID(ctx, deckID)
}

// ListDecks returns the whole deck tree as a flat slice ordered parents
// first, siblings by name. The caller rebuilds the tree from ParentID.
func (s *Service) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	return s.decks.List(ctx)
}

// CreateDeck creates a deck, optionally nested under a parent.
func (s *Service) CreateDeck(ctx context.Context, input CreateDeckInput) (*domain.Deck, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)

	if input.ParentID != nil {
		if _, err := s.decks.GetByID(ctx, *input.ParentID); err != nil {
			return nil, fmt.Errorf("parent deck: %w", err)
		}
	}

	deck, err := s.decks.Create(ctx, input.ParentID, name)
	if err != nil {
		return nil, fmt.Errorf("create deck: %w", err)
	}

	s.log.InfoContext(ctx, "deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", name),
	)

	return deck, nil
}

// UpdateDeck renames and/or moves a deck. Moving a deck under one of its
// own descendants is rejected.
func (s *Service) UpdateDeck(ctx context.Context, input UpdateDeckInput) (*domain.Deck, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.ParentID != nil && !input.ToRoot {
		if err := s.checkNotDescendant(ctx, input.DeckID, *input.ParentID); err != nil {
			return nil, err
		}
	}

	deck, err := s.decks.Update(ctx, input.DeckID, domain.DeckUpdateParams{
		Name:     trimOrNil(input.Name),
		ParentID: input.ParentID,
		ToRoot:   input.ToRoot,
	})
	if err != nil {
		return nil, fmt.Errorf("update deck: %w", err)
	}

	s.log.InfoContext(ctx, "deck updated",
		slog.String("deck_id", deck.ID.String()),
	)

	return deck, nil
}

// DeleteDeck removes a deck with its child decks and words.
func (s *Service) DeleteDeck(ctx context.Context, deckID uuid.UUID) error {
	if deckID == uuid.Nil {
		return domain.NewValidationError("deck_id", "required")
	}

	if err := s.decks.Delete(ctx, deckID); err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}

	s.log.InfoContext(ctx, "deck deleted",
		slog.String("deck_id", deckID.String()),
	)

	return nil
}

// checkNotDescendant walks up from newParent and fails if deckID appears,
// which would create a cycle in the tree.
func (s *Service) checkNotDescendant(ctx context.Context, deckID, newParent uuid.UUID) error {
	cursor := newParent
	for {
		if cursor == deckID {
			return domain.NewValidationError("parent_id", "cannot move a deck under its own descendant")
		}
		parent, err := s.decks.GetByID(ctx, cursor)
		if err != nil {
			return fmt.Errorf("resolve parent chain: %w", err)
		}
		if parent.ParentID == nil {
			return nil
		}
		cursor = *parent.ParentID
	}
}
