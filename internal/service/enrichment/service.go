// Package enrichment is the boundary between callers (UI, background
// word-enhancement job) and the AI dispatch machinery: request registry,
// credential fallback, per-key concurrency gating.
package enrichment

import (
	"context"
	"log/slog"

	"github.com/hieunguyen/vocabdeck/internal/domain"
	"github.com/hieunguyen/vocabdeck/internal/provider"
)

// Service is the enrichment façade. It validates caller input, forwards
// to the dispatcher, and shapes results; secrets never pass through it.
type Service struct {
	log        *slog.Logger
	dispatcher *Dispatcher
}

// NewService creates the façade.
func NewService(logger *slog.Logger, dispatcher *Dispatcher) *Service {
	return &Service{
		log:        logger.With("service", "enrichment"),
		dispatcher: dispatcher,
	}
}

// AutoMeaning suggests ranked meanings for a highlighted word, falling
// back across the whole credential pool.
func (s *Service) AutoMeaning(ctx context.Context, input AutoMeaningInput) (*domain.EnrichmentResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	result, err := s.dispatcher.AutoMeaning(ctx, input.RequestID, provider.MeaningRequest{
		Word:           input.Word,
		SourceSentence: input.SourceSentence,
		From:           input.From,
		To:             input.To,
	})
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "auto-meaning done",
		slog.String("request_id", input.RequestID),
		slog.String("word", input.Word),
		slog.Int("candidates", len(result.Candidates)),
	)
	return result, nil
}

// CancelAutoMeaning cancels an in-flight auto-meaning request. Unknown or
// settled ids return false without error.
func (s *Service) CancelAutoMeaning(ctx context.Context, requestID string) bool {
	cancelled := s.dispatcher.Cancel(requestID)
	s.log.DebugContext(ctx, "cancel requested",
		slog.String("request_id", requestID),
		slog.Bool("was_live", cancelled),
	)
	return cancelled
}

// ExampleSentence suggests one example sentence using the active key.
func (s *Service) ExampleSentence(ctx context.Context, input ExampleInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}
	return s.dispatcher.Example(ctx, provider.ExampleRequest{
		Word:           input.Word,
		Meaning:        input.Meaning,
		Pos:            input.Pos,
		SourceSentence: input.SourceSentence,
	})
}

// IPA suggests the IPA transcription using the active key.
func (s *Service) IPA(ctx context.Context, input IPAInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}
	return s.dispatcher.IPA(ctx, provider.IPARequest{
		Word:    input.Word,
		Dialect: input.Dialect,
	})
}

// Translate translates free text using the active key.
func (s *Service) Translate(ctx context.Context, input TranslateInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}
	return s.dispatcher.Translate(ctx, provider.TranslateRequest{
		Text:   input.Text,
		From:   input.From,
		To:     input.To,
		Region: input.Region,
	})
}
