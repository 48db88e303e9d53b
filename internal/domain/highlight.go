package domain

import (
	"time"

	"github.com/google/uuid"
)

// HighlightRect is one rectangle of a highlight in PDF page coordinates.
type HighlightRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Highlight is a user highlight on one page of a stored PDF.
// Text is the selected text; it usually seeds a deck word.
type Highlight struct {
	ID        uuid.UUID
	PDFID     string
	Page      int
	Rects     []HighlightRect
	Text      string
	Color     string
	CreatedAt time.Time
}
