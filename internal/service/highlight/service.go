// Package highlight manages PDF highlight annotations. Writes replace the
// whole page so the client can send its current state without diffing.
package highlight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

type highlightRepo interface {
	ListByPDF(ctx context.Context, pdfID string) ([]domain.Highlight, error)
	ReplacePage(ctx context.Context, pdfID string, page int, highlights []domain.Highlight) ([]domain.Highlight, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides highlight operations.
type Service struct {
	highlights highlightRepo
	tx         txManager
	log        *slog.Logger
}

// NewService creates a new Highlight service.
func NewService(log *slog.Logger, highlights highlightRepo, tx txManager) *Service {
	return &Service{
		highlights: highlights,
		tx:         tx,
		log:        log.With("service", "highlight"),
	}
}

// ListByPDF returns all highlights of a stored PDF ordered by page.
func (s *Service) ListByPDF(ctx context.Context, pdfID string) ([]domain.Highlight, error) {
	pdfID = strings.TrimSpace(pdfID)
	if pdfID == "" {
		return nil, domain.NewValidationError("pdf_id", "required")
	}
	return s.highlights.ListByPDF(ctx, pdfID)
}

// ReplacePageInput holds one page's worth of highlights.
type ReplacePageInput struct {
	PDFID      string
	Page       int
	Highlights []domain.Highlight
}

// Validate checks all fields and collects all errors.
func (i *ReplacePageInput) Validate() error {
	i.PDFID = strings.TrimSpace(i.PDFID)

	var errs []domain.FieldError
	if i.PDFID == "" {
		errs = append(errs, domain.FieldError{Field: "pdf_id", Message: "required"})
	}
	if i.Page < 1 {
		errs = append(errs, domain.FieldError{Field: "page", Message: "must be >= 1"})
	}
	for n, h := range i.Highlights {
		if len(h.Rects) == 0 {
			errs = append(errs, domain.FieldError{
				Field:   fmt.Sprintf("highlights[%d].rects", n),
				Message: "at least one rectangle required",
			})
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ReplacePage atomically replaces all highlights of one page. An empty
// Highlights slice clears the page.
func (s *Service) ReplacePage(ctx context.Context, input ReplacePageInput) ([]domain.Highlight, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result []domain.Highlight
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var repErr error
		result, repErr = s.highlights.ReplacePage(txCtx, input.PDFID, input.Page, input.Highlights)
		if repErr != nil {
			return fmt.Errorf("replace page highlights: %w", repErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "page highlights replaced",
		slog.String("pdf_id", input.PDFID),
		slog.Int("page", input.Page),
		slog.Int("count", len(result)),
	)

	return result, nil
}
