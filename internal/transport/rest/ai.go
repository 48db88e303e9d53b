package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hieunguyen/vocabdeck/internal/domain"
	"github.com/hieunguyen/vocabdeck/internal/service/enrichment"
)

// aiService defines the minimal interface needed by AIHandler.
type aiService interface {
	AutoMeaning(ctx context.Context, input enrichment.AutoMeaningInput) (*domain.EnrichmentResult, error)
	CancelAutoMeaning(ctx context.Context, requestID string) bool
	ExampleSentence(ctx context.Context, input enrichment.ExampleInput) (string, error)
	IPA(ctx context.Context, input enrichment.IPAInput) (string, error)
	Translate(ctx context.Context, input enrichment.TranslateInput) (string, error)
}

// keyStatus is the slice of the key pool the AI endpoints need.
type keyStatus interface {
	HasKey() bool
	Concurrency() int
	SetConcurrency(ctx context.Context, n int) error
}

// AIHandler serves the AI enrichment REST endpoints.
type AIHandler struct {
	svc  aiService
	keys keyStatus
	log  *slog.Logger
}

// NewAIHandler creates an AIHandler.
func NewAIHandler(svc aiService, keys keyStatus, logger *slog.Logger) *AIHandler {
	return &AIHandler{svc: svc, keys: keys, log: logger.With("handler", "ai")}
}

type meaningRequest struct {
	RequestID      string `json:"requestId"`
	Word           string `json:"word"`
	SourceSentence string `json:"sourceSentence"`
	From           string `json:"from"`
	To             string `json:"to"`
}

type meaningResponse struct {
	RequestID         string                   `json:"requestId"`
	Word              string                   `json:"word"`
	MeaningSuggested  string                   `json:"meaningSuggested"`
	ContextSentenceVi string                   `json:"contextSentenceVi,omitempty"`
	Candidates        []domain.MeaningCandidate `json:"candidates"`
}

type cancelRequest struct {
	RequestID string `json:"requestId"`
}

type exampleRequest struct {
	Word           string  `json:"word"`
	Meaning        *string `json:"meaning,omitempty"`
	Pos            *string `json:"pos,omitempty"`
	SourceSentence *string `json:"sourceSentence,omitempty"`
}

type ipaRequest struct {
	Word    string `json:"word"`
	Dialect string `json:"dialect"`
}

type translateRequest struct {
	Text   string `json:"text"`
	From   string `json:"from"`
	To     string `json:"to"`
	Region string `json:"region"`
}

// Status handles GET /api/ai/status.
func (h *AIHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"hasKey": h.keys.HasKey()})
}

// GetConcurrency handles GET /api/ai/concurrency.
func (h *AIHandler) GetConcurrency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"concurrency": h.keys.Concurrency()})
}

// SetConcurrency handles PUT /api/ai/concurrency.
func (h *AIHandler) SetConcurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Concurrency int `json:"concurrency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.keys.SetConcurrency(r.Context(), req.Concurrency); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"concurrency": h.keys.Concurrency()})
}

// Meaning handles POST /api/ai/meaning.
func (h *AIHandler) Meaning(w http.ResponseWriter, r *http.Request) {
	var req meaningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.AutoMeaning(r.Context(), enrichment.AutoMeaningInput{
		RequestID:      req.RequestID,
		Word:           req.Word,
		SourceSentence: req.SourceSentence,
		From:           req.From,
		To:             req.To,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, meaningResponse{
		RequestID:         result.RequestID,
		Word:              result.Word,
		MeaningSuggested:  result.MeaningSuggested,
		ContextSentenceVi: result.ContextSentenceVi,
		Candidates:        result.Candidates,
	})
}

// CancelMeaning handles POST /api/ai/meaning/cancel.
func (h *AIHandler) CancelMeaning(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cancelled := h.svc.CancelAutoMeaning(r.Context(), req.RequestID)
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

// Example handles POST /api/ai/example.
func (h *AIHandler) Example(w http.ResponseWriter, r *http.Request) {
	var req exampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sentence, err := h.svc.ExampleSentence(r.Context(), enrichment.ExampleInput{
		Word:           req.Word,
		Meaning:        req.Meaning,
		Pos:            req.Pos,
		SourceSentence: req.SourceSentence,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"sentence": sentence})
}

// IPA handles POST /api/ai/ipa.
func (h *AIHandler) IPA(w http.ResponseWriter, r *http.Request) {
	var req ipaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ipa, err := h.svc.IPA(r.Context(), enrichment.IPAInput{
		Word:    req.Word,
		Dialect: req.Dialect,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"ipa": ipa})
}

// Translate handles POST /api/ai/translate.
func (h *AIHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text, err := h.svc.Translate(r.Context(), enrichment.TranslateInput{
		Text:   req.Text,
		From:   req.From,
		To:     req.To,
		Region: req.Region,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (h *AIHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrCancelled):
		// Cancellation is a normal outcome, not an error.
		writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateRequest):
		writeError(w, http.StatusConflict, "request id already in flight")
	case errors.Is(err, domain.ErrNoCredential):
		writeError(w, http.StatusPreconditionFailed, "no API key configured")
	case errors.Is(err, domain.ErrKeysExhausted):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
