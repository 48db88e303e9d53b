package deck

import (
	"strings"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// CreateDeckInput holds the parameters for creating a deck.
type CreateDeckInput struct {
	Name     string
	ParentID *uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i CreateDeckInput) Validate() error {
	var errs []domain.FieldError

	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(name) > 100 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "max 100 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateDeckInput holds the parameters for renaming or moving a deck.
type UpdateDeckInput struct {
	DeckID   uuid.UUID
	Name     *string
	ParentID *uuid.UUID
	ToRoot   bool
}

// Validate checks all fields and collects all errors.
func (i UpdateDeckInput) Validate() error {
	var errs []domain.FieldError

	if i.DeckID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "deck_id", Message: "required"})
	}
	if i.Name == nil && i.ParentID == nil && !i.ToRoot {
		errs = append(errs, domain.FieldError{Field: "input", Message: "at least one field must be provided"})
	}
	if i.Name != nil {
		name := strings.TrimSpace(*i.Name)
		if name == "" {
			errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
		}
		if len(name) > 100 {
			errs = append(errs, domain.FieldError{Field: "name", Message: "max 100 characters"})
		}
	}
	if i.ParentID != nil && *i.ParentID == i.DeckID {
		errs = append(errs, domain.FieldError{Field: "parent_id", Message: "deck cannot be its own parent"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// AddWordInput holds the parameters for appending a word to a deck.
type AddWordInput struct {
	DeckID         uuid.UUID
	Term           string
	Meaning        *string
	IPA            *string
	Pos            *string
	Example        *string
	SourceSentence *string
}

// Validate checks all fields and collects all errors.
func (i AddWordInput) Validate() error {
	var errs []domain.FieldError

	if i.DeckID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "deck_id", Message: "required"})
	}
	term := strings.TrimSpace(i.Term)
	if term == "" {
		errs = append(errs, domain.FieldError{Field: "term", Message: "required"})
	}
	if len(term) > 200 {
		errs = append(errs, domain.FieldError{Field: "term", Message: "max 200 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateWordInput holds the parameters for partially updating a word.
// Nil fields are left untouched; for nullable fields ptr("") clears.
type UpdateWordInput struct {
	WordID         uuid.UUID
	Term           *string
	Meaning        *string
	IPA            *string
	Pos            *string
	Example        *string
	SourceSentence *string
	Position       *int
}

// Validate checks all fields and collects all errors.
func (i UpdateWordInput) Validate() error {
	var errs []domain.FieldError

	if i.WordID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "word_id", Message: "required"})
	}
	if i.Term == nil && i.Meaning == nil && i.IPA == nil && i.Pos == nil &&
		i.Example == nil && i.SourceSentence == nil && i.Position == nil {
		errs = append(errs, domain.FieldError{Field: "input", Message: "at least one field must be provided"})
	}
	if i.Term != nil && strings.TrimSpace(*i.Term) == "" {
		errs = append(errs, domain.FieldError{Field: "term", Message: "required"})
	}
	if i.Position != nil && *i.Position < 0 {
		errs = append(errs, domain.FieldError{Field: "position", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ApplyEnrichmentInput holds the accepted AI suggestion for a word.
type ApplyEnrichmentInput struct {
	WordID  uuid.UUID
	Meaning string
}

// Validate checks all fields and collects all errors.
func (i ApplyEnrichmentInput) Validate() error {
	var errs []domain.FieldError

	if i.WordID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "word_id", Message: "required"})
	}
	if strings.TrimSpace(i.Meaning) == "" {
		errs = append(errs, domain.FieldError{Field: "meaning", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
