package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
	"github.com/hieunguyen/vocabdeck/internal/service/deck"
)

// deckService defines the minimal interface needed by DeckHandler.
type deckService interface {
	GetDeck(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error)
	ListDecks(ctx context.Context) ([]domain.Deck, error)
	CreateDeck(ctx context.Context, input deck.CreateDeckInput) (*domain.Deck, error)
	UpdateDeck(ctx context.Context, input deck.UpdateDeckInput) (*domain.Deck, error)
	DeleteDeck(ctx context.Context, deckID uuid.UUID) error

	ListWords(ctx context.Context, deckID uuid.UUID) ([]domain.Word, error)
	AddWord(ctx context.Context, input deck.AddWordInput) (*domain.Word, error)
	UpdateWord(ctx context.Context, input deck.UpdateWordInput) (*domain.Word, error)
	ApplyEnrichment(ctx context.Context, input deck.ApplyEnrichmentInput) (*domain.Word, error)
	DeleteWord(ctx context.Context, wordID uuid.UUID) error

	ExportCSV(ctx context.Context, deckID uuid.UUID, w io.Writer) error
	ImportCSV(ctx context.Context, deckID uuid.UUID, r io.Reader) (int, error)
}

// DeckHandler serves the deck and word REST endpoints.
type DeckHandler struct {
	svc deckService
	log *slog.Logger
}

// NewDeckHandler creates a DeckHandler.
func NewDeckHandler(svc deckService, logger *slog.Logger) *DeckHandler {
	return &DeckHandler{svc: svc, log: logger.With("handler", "deck")}
}

type deckResponse struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type wordResponse struct {
	ID             uuid.UUID  `json:"id"`
	DeckID         uuid.UUID  `json:"deckId"`
	Position       int        `json:"position"`
	Term           string     `json:"term"`
	Meaning        *string    `json:"meaning,omitempty"`
	IPA            *string    `json:"ipa,omitempty"`
	Pos            *string    `json:"pos,omitempty"`
	Example        *string    `json:"example,omitempty"`
	SourceSentence *string    `json:"sourceSentence,omitempty"`
	EnrichedAt     *time.Time `json:"enrichedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type createDeckRequest struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parentId"`
}

type updateDeckRequest struct {
	Name     *string    `json:"name"`
	ParentID *uuid.UUID `json:"parentId"`
	ToRoot   bool       `json:"toRoot"`
}

type addWordRequest struct {
	Term           string  `json:"term"`
	Meaning        *string `json:"meaning"`
	IPA            *string `json:"ipa"`
	Pos            *string `json:"pos"`
	Example        *string `json:"example"`
	SourceSentence *string `json:"sourceSentence"`
}

type updateWordRequest struct {
	Term           *string `json:"term"`
	Meaning        *string `json:"meaning"`
	IPA            *string `json:"ipa"`
	Pos            *string `json:"pos"`
	Example        *string `json:"example"`
	SourceSentence *string `json:"sourceSentence"`
	Position       *int    `json:"position"`
}

func toDeckResponse(d *domain.Deck) deckResponse {
	return deckResponse{
		ID:        d.ID,
		ParentID:  d.ParentID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toWordResponse(w *domain.Word) wordResponse {
	return wordResponse{
		ID:             w.ID,
		DeckID:         w.DeckID,
		Position:       w.Position,
		Term:           w.Term,
		Meaning:        w.Meaning,
		IPA:            w.IPA,
		Pos:            w.Pos,
		Example:        w.Example,
		SourceSentence: w.SourceSentence,
		EnrichedAt:     w.EnrichedAt,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

// List handles GET /api/decks.
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	decks, err := h.svc.ListDecks(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]deckResponse, 0, len(decks))
	for i := range decks {
		resp = append(resp, toDeckResponse(&decks[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/decks/{id}.
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetDeck(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeckResponse(d))
}

// Create handles POST /api/decks.
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.svc.CreateDeck(r.Context(), deck.CreateDeckInput{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDeckResponse(d))
}

// Update handles PATCH /api/decks/{id}.
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.svc.UpdateDeck(r.Context(), deck.UpdateDeckInput{
		DeckID:   id,
		Name:     req.Name,
		ParentID: req.ParentID,
		ToRoot:   req.ToRoot,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeckResponse(d))
}

// Delete handles DELETE /api/decks/{id}.
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteDeck(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWords handles GET /api/decks/{id}/words.
func (h *DeckHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	words, err := h.svc.ListWords(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]wordResponse, 0, len(words))
	for i := range words {
		resp = append(resp, toWordResponse(&words[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddWord handles POST /api/decks/{id}/words.
func (h *DeckHandler) AddWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req addWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	word, err := h.svc.AddWord(r.Context(), deck.AddWordInput{
		DeckID:         id,
		Term:           req.Term,
		Meaning:        req.Meaning,
		IPA:            req.IPA,
		Pos:            req.Pos,
		Example:        req.Example,
		SourceSentence: req.SourceSentence,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWordResponse(word))
}

// UpdateWord handles PATCH /api/words/{id}.
func (h *DeckHandler) UpdateWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	word, err := h.svc.UpdateWord(r.Context(), deck.UpdateWordInput{
		WordID:         id,
		Term:           req.Term,
		Meaning:        req.Meaning,
		IPA:            req.IPA,
		Pos:            req.Pos,
		Example:        req.Example,
		SourceSentence: req.SourceSentence,
		Position:       req.Position,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWordResponse(word))
}

// ApplyEnrichment handles POST /api/words/{id}/enrichment: it writes the
// meaning the user accepted and stamps the word as enriched.
func (h *DeckHandler) ApplyEnrichment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Meaning string `json:"meaning"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	word, err := h.svc.ApplyEnrichment(r.Context(), deck.ApplyEnrichmentInput{
		WordID:  id,
		Meaning: req.Meaning,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWordResponse(word))
}

// DeleteWord handles DELETE /api/words/{id}.
func (h *DeckHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteWord(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV handles GET /api/decks/{id}/export.
func (h *DeckHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	// Existence is checked before any bytes are written, so the error
	// path can still set a status code.
	if _, err := h.svc.GetDeck(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "deck-"+id.String()+".csv"))
	if err := h.svc.ExportCSV(r.Context(), id, w); err != nil {
		h.log.ErrorContext(r.Context(), "csv export failed",
			slog.String("deck_id", id.String()),
			slog.String("error", err.Error()),
		)
	}
}

// ImportCSV handles POST /api/decks/{id}/import.
func (h *DeckHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	imported, err := h.svc.ImportCSV(r.Context(), id, r.Body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// pathUUID parses the named path segment as a UUID, writing a 400 on
// failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func (h *DeckHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "deck name already in use")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
