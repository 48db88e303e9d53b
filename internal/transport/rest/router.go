package rest

import "net/http"

// Handlers groups everything the router mounts.
type Handlers struct {
	Health *HealthHandler
	AI     *AIHandler
	Keys   *KeysHandler
	Decks  *DeckHandler
	PDFs   *PDFHandler
}

// NewRouter builds the route table. Middleware is applied by the caller
// so tests can mount handlers bare.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("GET /api/ai/status", h.AI.Status)
	mux.HandleFunc("GET /api/ai/concurrency", h.AI.GetConcurrency)
	mux.HandleFunc("PUT /api/ai/concurrency", h.AI.SetConcurrency)
	mux.HandleFunc("POST /api/ai/meaning", h.AI.Meaning)
	mux.HandleFunc("POST /api/ai/meaning/cancel", h.AI.CancelMeaning)
	mux.HandleFunc("POST /api/ai/example", h.AI.Example)
	mux.HandleFunc("POST /api/ai/ipa", h.AI.IPA)
	mux.HandleFunc("POST /api/ai/translate", h.AI.Translate)

	mux.HandleFunc("GET /api/ai/keys", h.Keys.List)
	mux.HandleFunc("POST /api/ai/keys", h.Keys.Create)
	mux.HandleFunc("DELETE /api/ai/keys/{id}", h.Keys.Delete)
	mux.HandleFunc("POST /api/ai/keys/{id}/activate", h.Keys.Activate)

	mux.HandleFunc("GET /api/decks", h.Decks.List)
	mux.HandleFunc("POST /api/decks", h.Decks.Create)
	mux.HandleFunc("GET /api/decks/{id}", h.Decks.Get)
	mux.HandleFunc("PATCH /api/decks/{id}", h.Decks.Update)
	mux.HandleFunc("DELETE /api/decks/{id}", h.Decks.Delete)
	mux.HandleFunc("GET /api/decks/{id}/words", h.Decks.ListWords)
	mux.HandleFunc("POST /api/decks/{id}/words", h.Decks.AddWord)
	mux.HandleFunc("GET /api/decks/{id}/export", h.Decks.ExportCSV)
	mux.HandleFunc("POST /api/decks/{id}/import", h.Decks.ImportCSV)
	mux.HandleFunc("PATCH /api/words/{id}", h.Decks.UpdateWord)
	mux.HandleFunc("POST /api/words/{id}/enrichment", h.Decks.ApplyEnrichment)
	mux.HandleFunc("DELETE /api/words/{id}", h.Decks.DeleteWord)

	mux.HandleFunc("POST /api/pdfs", h.PDFs.Upload)
	mux.HandleFunc("GET /api/pdfs/{id}", h.PDFs.Get)
	mux.HandleFunc("GET /api/pdfs/{id}/highlights", h.PDFs.ListHighlights)
	mux.HandleFunc("PUT /api/pdfs/{id}/highlights", h.PDFs.ReplaceHighlights)

	return mux
}
