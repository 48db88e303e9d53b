package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
	"github.com/hieunguyen/vocabdeck/internal/service/keypool"
)

// keyPoolService defines the minimal interface needed by KeysHandler.
type keyPoolService interface {
	ListMasked() keypool.MaskedPool
	AddCredential(ctx context.Context, input keypool.AddCredentialInput) (uuid.UUID, error)
	DeleteCredential(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID) error
}

// KeysHandler serves the credential pool management endpoints. Secrets go
// in on create and never come back out.
type KeysHandler struct {
	pool keyPoolService
	log  *slog.Logger
}

// NewKeysHandler creates a KeysHandler.
func NewKeysHandler(pool keyPoolService, logger *slog.Logger) *KeysHandler {
	return &KeysHandler{pool: pool, log: logger.With("handler", "keys")}
}

type addKeyRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type maskedKeyResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Masked string    `json:"masked"`
}

type listKeysResponse struct {
	ActiveID *uuid.UUID          `json:"activeId"`
	Items    []maskedKeyResponse `json:"items"`
}

// List handles GET /api/ai/keys.
func (h *KeysHandler) List(w http.ResponseWriter, r *http.Request) {
	pool := h.pool.ListMasked()

	resp := listKeysResponse{
		ActiveID: pool.ActiveID,
		Items:    make([]maskedKeyResponse, 0, len(pool.Items)),
	}
	for _, item := range pool.Items {
		resp.Items = append(resp.Items, maskedKeyResponse{
			ID:     item.ID,
			Name:   item.Name,
			Masked: item.Masked,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/ai/keys.
func (h *KeysHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req addKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.pool.AddCredential(r.Context(), keypool.AddCredentialInput{
		Name:   req.Name,
		Secret: req.Secret,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
}

// Delete handles DELETE /api/ai/keys/{id}.
func (h *KeysHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid key id")
		return
	}

	if err := h.pool.DeleteCredential(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /api/ai/keys/{id}/activate.
func (h *KeysHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid key id")
		return
	}

	if err := h.pool.SetActive(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *KeysHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "key not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "key name already in use")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
