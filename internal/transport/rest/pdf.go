package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
	"github.com/hieunguyen/vocabdeck/internal/service/highlight"
)

// maxPDFUploadBytes caps a single upload.
const maxPDFUploadBytes = 100 << 20 // 100 MiB

// pdfStore defines the blob operations PDFHandler needs.
type pdfStore interface {
	Save(r io.Reader) (string, error)
	Open(id string) (io.ReadSeekCloser, int64, error)
	Exists(id string) bool
}

// highlightService defines the minimal interface needed by PDFHandler.
type highlightService interface {
	ListByPDF(ctx context.Context, pdfID string) ([]domain.Highlight, error)
	ReplacePage(ctx context.Context, input highlight.ReplacePageInput) ([]domain.Highlight, error)
}

// PDFHandler serves PDF upload, streaming, and highlight endpoints.
type PDFHandler struct {
	store      pdfStore
	highlights highlightService
	log        *slog.Logger
}

// NewPDFHandler creates a PDFHandler.
func NewPDFHandler(store pdfStore, highlights highlightService, logger *slog.Logger) *PDFHandler {
	return &PDFHandler{
		store:      store,
		highlights: highlights,
		log:        logger.With("handler", "pdf"),
	}
}

type highlightDTO struct {
	ID        uuid.UUID              `json:"id,omitempty"`
	Page      int                    `json:"page"`
	Rects     []domain.HighlightRect `json:"rects"`
	Text      string                 `json:"text"`
	Color     string                 `json:"color,omitempty"`
	CreatedAt time.Time              `json:"createdAt,omitempty"`
}

type replacePageRequest struct {
	Page       int            `json:"page"`
	Highlights []highlightDTO `json:"highlights"`
}

func toHighlightDTO(h domain.Highlight) highlightDTO {
	return highlightDTO{
		ID:        h.ID,
		Page:      h.Page,
		Rects:     h.Rects,
		Text:      h.Text,
		Color:     h.Color,
		CreatedAt: h.CreatedAt,
	}
}

// Upload handles POST /api/pdfs. The body is the raw PDF; re-uploading
// the same bytes returns the same id.
func (h *PDFHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.Save(http.MaxBytesReader(w, r.Body, maxPDFUploadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "pdf too large")
			return
		}
		h.log.ErrorContext(r.Context(), "pdf upload failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Get handles GET /api/pdfs/{id}, streaming the stored file.
func (h *PDFHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	f, size, err := h.store.Open(id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer f.Close() //nolint:errcheck

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	http.ServeContent(w, r, id+".pdf", time.Time{}, f)
}

// ListHighlights handles GET /api/pdfs/{id}/highlights.
func (h *PDFHandler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.store.Exists(id) {
		writeError(w, http.StatusNotFound, "pdf not found")
		return
	}

	items, err := h.highlights.ListByPDF(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]highlightDTO, 0, len(items))
	for _, item := range items {
		resp = append(resp, toHighlightDTO(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReplaceHighlights handles PUT /api/pdfs/{id}/highlights: it replaces one
// page's highlights with the given set. An empty set clears the page.
func (h *PDFHandler) ReplaceHighlights(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.store.Exists(id) {
		writeError(w, http.StatusNotFound, "pdf not found")
		return
	}

	var req replacePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := highlight.ReplacePageInput{
		PDFID:      id,
		Page:       req.Page,
		Highlights: make([]domain.Highlight, 0, len(req.Highlights)),
	}
	for _, dto := range req.Highlights {
		input.Highlights = append(input.Highlights, domain.Highlight{
			ID:    dto.ID,
			PDFID: id,
			Page:  req.Page,
			Rects: dto.Rects,
			Text:  dto.Text,
			Color: dto.Color,
		})
	}

	saved, err := h.highlights.ReplacePage(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]highlightDTO, 0, len(saved))
	for _, item := range saved {
		resp = append(resp, toHighlightDTO(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PDFHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
