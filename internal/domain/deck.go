package domain

import (
	"time"

	"github.com/google/uuid"
)

// Deck is one vocabulary deck. Decks form a folder tree via ParentID;
// a nil ParentID means the deck sits at the root.
type Deck struct {
	ID        uuid.UUID
	ParentID  *uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeckUpdateParams carries partial deck updates. Nil fields are left
// untouched; ToRoot moves the deck to the top level and wins over ParentID.
type DeckUpdateParams struct {
	Name     *string
	ParentID *uuid.UUID
	ToRoot   bool
}

// Word is one row of a deck: a highlighted term plus its annotations.
// Meaning, IPA, POS and Example are filled either by the user or by
// AI enrichment.
type Word struct {
	ID             uuid.UUID
	DeckID         uuid.UUID
	Position       int
	Term           string
	Meaning        *string
	IPA            *string
	Pos            *string
	Example        *string
	SourceSentence *string
	EnrichedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WordUpdateParams carries partial word updates. Nil fields are left
// untouched; for nullable columns a pointer to "" clears the value.
type WordUpdateParams struct {
	Term           *string
	Meaning        *string
	IPA            *string
	Pos            *string
	Example        *string
	SourceSentence *string
	Position       *int
}
