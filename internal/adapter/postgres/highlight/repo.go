// Package highlight implements the Highlight repository using PostgreSQL.
// Rectangles are stored as a jsonb array per highlight; writes replace all
// highlights of one page atomically.
package highlight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hieunguyen/vocabdeck/internal/adapter/postgres"
	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// Repo provides highlight persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new highlight repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const listByPDFSQL = `
SELECT id, pdf_id, page, rects, text, color, created_at
FROM highlights
WHERE pdf_id = $1
ORDER BY page, created_at`

const deletePageSQL = `DELETE FROM highlights WHERE pdf_id = $1 AND page = $2`

const insertSQL = `
INSERT INTO highlights (id, pdf_id, page, rects, text, color)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`

// ListByPDF returns all highlights of a PDF ordered by page.
// Returns an empty slice (not nil) when the PDF has none.
func (r *Repo) ListByPDF(ctx context.Context, pdfID string) ([]domain.Highlight, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByPDFSQL, pdfID)
	if err != nil {
		return nil, fmt.Errorf("list highlights: %w", err)
	}
	defer rows.Close()

	result := []domain.Highlight{}
	for rows.Next() {
		var (
			h     domain.Highlight
			rects []byte
		)
		if err := rows.Scan(&h.ID, &h.PDFID, &h.Page, &rects, &h.Text, &h.Color, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan highlight: %w", err)
		}
		if err := json.Unmarshal(rects, &h.Rects); err != nil {
			return nil, fmt.Errorf("decode highlight rects: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list highlights: %w", err)
	}

	return result, nil
}

// ReplacePage replaces all highlights of one page of a PDF. The caller is
// expected to run this inside a transaction via TxManager so the delete and
// the inserts are atomic. Returns the persisted highlights.
func (r *Repo) ReplacePage(ctx context.Context, pdfID string, page int, highlights []domain.Highlight) ([]domain.Highlight, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deletePageSQL, pdfID, page); err != nil {
		return nil, fmt.Errorf("clear page highlights: %w", err)
	}

	result := make([]domain.Highlight, 0, len(highlights))
	for _, h := range highlights {
		h.PDFID = pdfID
		h.Page = page
		if h.ID == uuid.Nil {
			h.ID = uuid.New()
		}
		if h.Color == "" {
			h.Color = "yellow"
		}

		rects, err := json.Marshal(h.Rects)
		if err != nil {
			return nil, fmt.Errorf("encode highlight rects: %w", err)
		}

		err = querier.QueryRow(ctx, insertSQL, h.ID, h.PDFID, h.Page, rects, h.Text, h.Color).Scan(&h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert highlight: %w", err)
		}
		result = append(result, h)
	}

	return result, nil
}
