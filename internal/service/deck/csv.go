package deck

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// csvHeader is the fixed column layout for deck export and import.
var csvHeader = []string{"term", "meaning", "ipa", "pos", "example", "source_sentence"}

// ExportCSV writes the deck's words to w in the fixed column layout, header
// row first, rows in deck order.
func (s *Service) ExportCSV(ctx context.Context, deckID uuid.UUID, w io.Writer) error {
	words, err := s.ListWords(ctx, deckID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, word := range words {
		record := []string{
			word.Term,
			deref(word.Meaning),
			deref(word.IPA),
			deref(word.Pos),
			deref(word.Example),
			deref(word.SourceSentence),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// ImportCSV appends rows from r to the deck. A leading header row matching
// the export layout is skipped; rows with an empty term are rejected.
// The whole import is one transaction: a bad row imports nothing.
func (s *Service) ImportCSV(ctx context.Context, deckID uuid.UUID, r io.Reader) (int, error) {
	if deckID == uuid.Nil {
		return 0, domain.NewValidationError("deck_id", "required")
	}
	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		return 0, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	var words []domain.Word
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, domain.NewValidationError("csv", fmt.Sprintf("parse error: %v", err))
		}
		line++

		if line == 1 && isHeaderRow(record) {
			continue
		}

		term := domain.NormalizeText(record[0])
		if term == "" {
			return 0, domain.NewValidationError("csv", fmt.Sprintf("row %d: term is required", line))
		}

		words = append(words, domain.Word{
			DeckID:         deckID,
			Term:           term,
			Meaning:        optField(record[1]),
			IPA:            optField(record[2]),
			Pos:            optField(record[3]),
			Example:        optField(record[4]),
			SourceSentence: optField(record[5]),
		})
	}

	if len(words) == 0 {
		return 0, nil
	}

	var inserted int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var bulkErr error
		inserted, bulkErr = s.words.BulkInsert(txCtx, deckID, words)
		if bulkErr != nil {
			return fmt.Errorf("bulk insert words: %w", bulkErr)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.InfoContext(ctx, "deck imported",
		slog.String("deck_id", deckID.String()),
		slog.Int("words", inserted),
	)

	return inserted, nil
}

func isHeaderRow(record []string) bool {
	for i, col := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(record[i]), col) {
			return false
		}
	}
	return true
}

func optField(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
