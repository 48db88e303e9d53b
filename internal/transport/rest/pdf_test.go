package rest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hieunguyen/vocabdeck/internal/domain"
	"github.com/hieunguyen/vocabdeck/internal/service/highlight"
)

type pdfStoreMock struct {
	files map[string][]byte
}

func newPDFStoreMock() *pdfStoreMock {
	return &pdfStoreMock{files: make(map[string][]byte)}
}

func (m *pdfStoreMock) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	id := hex.EncodeToString(sum[:])
	m.files[id] = data
	return id, nil
}

func (m *pdfStoreMock) Open(id string) (io.ReadSeekCloser, int64, error) {
	data, ok := m.files[id]
	if !ok {
		return nil, 0, fmt.Errorf("pdf %q: %w", id, domain.ErrNotFound)
	}
	return nopSeekCloser{bytes.NewReader(data)}, int64(len(data)), nil
}

func (m *pdfStoreMock) Exists(id string) bool {
	_, ok := m.files[id]
	return ok
}

type nopSeekCloser struct{ *bytes.Reader }

func (nopSeekCloser) Close() error { return nil }

type highlightServiceMock struct {
	listFunc    func(ctx context.Context, pdfID string) ([]domain.Highlight, error)
	replaceFunc func(ctx context.Context, input highlight.ReplacePageInput) ([]domain.Highlight, error)
}

func (m *highlightServiceMock) ListByPDF(ctx context.Context, pdfID string) ([]domain.Highlight, error) {
	return m.listFunc(ctx, pdfID)
}

func (m *highlightServiceMock) ReplacePage(ctx context.Context, input highlight.ReplacePageInput) ([]domain.Highlight, error) {
	return m.replaceFunc(ctx, input)
}

func TestPDFUpload(t *testing.T) {
	t.Parallel()

	store := newPDFStoreMock()
	h := NewPDFHandler(store, &highlightServiceMock{}, discardLogger())

	content := []byte("%PDF-1.4 test content")
	req := httptest.NewRequest(http.MethodPost, "/api/pdfs", bytes.NewReader(content))
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)

	sum := sha256.Sum256(content)
	if resp["id"] != hex.EncodeToString(sum[:]) {
		t.Errorf("expected content-addressed id, got %q", resp["id"])
	}
}

func TestPDFGet(t *testing.T) {
	t.Parallel()

	store := newPDFStoreMock()
	content := []byte("%PDF-1.4 test content")
	id, err := store.Save(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	h := NewPDFHandler(store, &highlightServiceMock{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/pdfs/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("expected body to match stored content")
	}
}

func TestPDFGet_Unknown(t *testing.T) {
	t.Parallel()

	h := NewPDFHandler(newPDFStoreMock(), &highlightServiceMock{}, discardLogger())

	id := strings.Repeat("ab", 32)
	req := httptest.NewRequest(http.MethodGet, "/api/pdfs/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestPDFListHighlights(t *testing.T) {
	t.Parallel()

	store := newPDFStoreMock()
	id, _ := store.Save(strings.NewReader("%PDF-1.4"))

	svc := &highlightServiceMock{
		listFunc: func(_ context.Context, pdfID string) ([]domain.Highlight, error) {
			return []domain.Highlight{
				{PDFID: pdfID, Page: 1, Text: "scarce", Rects: []domain.HighlightRect{{X: 1, Y: 2, W: 3, H: 4}}},
			}, nil
		},
	}
	h := NewPDFHandler(store, svc, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/pdfs/"+id+"/highlights", nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.ListHighlights(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp []highlightDTO
	decodeBody(t, rec, &resp)
	if len(resp) != 1 {
		t.Fatalf("expected 1 highlight, got %d", len(resp))
	}
	if resp[0].Text != "scarce" {
		t.Errorf("expected text 'scarce', got %q", resp[0].Text)
	}
}

func TestPDFListHighlights_UnknownPDF(t *testing.T) {
	t.Parallel()

	h := NewPDFHandler(newPDFStoreMock(), &highlightServiceMock{}, discardLogger())

	id := strings.Repeat("cd", 32)
	req := httptest.NewRequest(http.MethodGet, "/api/pdfs/"+id+"/highlights", nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.ListHighlights(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestPDFReplaceHighlights(t *testing.T) {
	t.Parallel()

	store := newPDFStoreMock()
	id, _ := store.Save(strings.NewReader("%PDF-1.4"))

	var gotInput highlight.ReplacePageInput
	svc := &highlightServiceMock{
		replaceFunc: func(_ context.Context, input highlight.ReplacePageInput) ([]domain.Highlight, error) {
			gotInput = input
			return input.Highlights, nil
		},
	}
	h := NewPDFHandler(store, svc, discardLogger())

	body := jsonBody(t, map[string]any{
		"page": 3,
		"highlights": []map[string]any{
			{"text": "scarce", "rects": []map[string]float64{{"x": 1, "y": 2, "w": 3, "h": 4}}},
		},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/pdfs/"+id+"/highlights", body)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.ReplaceHighlights(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotInput.PDFID != id {
		t.Errorf("expected pdf id %q, got %q", id, gotInput.PDFID)
	}
	if gotInput.Page != 3 {
		t.Errorf("expected page 3, got %d", gotInput.Page)
	}
	if len(gotInput.Highlights) != 1 || gotInput.Highlights[0].Page != 3 {
		t.Error("expected highlight stamped with the request page")
	}
}

func TestPDFReplaceHighlights_Validation(t *testing.T) {
	t.Parallel()

	store := newPDFStoreMock()
	id, _ := store.Save(strings.NewReader("%PDF-1.4"))

	svc := &highlightServiceMock{
		replaceFunc: func(_ context.Context, _ highlight.ReplacePageInput) ([]domain.Highlight, error) {
			return nil, domain.NewValidationError("page", "must be >= 1")
		},
	}
	h := NewPDFHandler(store, svc, discardLogger())

	body := jsonBody(t, map[string]any{"page": 0, "highlights": []map[string]any{}})
	req := httptest.NewRequest(http.MethodPut, "/api/pdfs/"+id+"/highlights", body)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.ReplaceHighlights(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
