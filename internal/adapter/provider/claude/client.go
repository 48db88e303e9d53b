// Package claude calls the Anthropic Messages API on behalf of the
// dispatcher. One Client serves every credential: the SDK client is built
// per call from the credential's secret, so secrets never rest here.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hieunguyen/vocabdeck/internal/provider"
)

const maxTokens = 1024

// Client issues enrichment calls against the Anthropic API.
type Client struct {
	model string
	log   *slog.Logger

	// newClient is swappable in tests.
	newClient func(secret string) anthropic.Client
}

// New creates a Client for the given model.
func New(model string, logger *slog.Logger) *Client {
	return &Client{
		model: model,
		log:   logger.With("adapter", "claude"),
		newClient: func(secret string) anthropic.Client {
			return anthropic.NewClient(option.WithAPIKey(secret))
		},
	}
}

// SuggestMeaning asks for ranked meaning candidates for a word in context.
// The response is strict JSON; candidates arrive most-likely first.
func (c *Client) SuggestMeaning(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error) {
	raw, err := c.complete(ctx, secret, meaningPrompt(req))
	if err != nil {
		return nil, err
	}

	result, err := parseMeaning(req.Word, raw)
	if err != nil {
		return nil, err
	}

	c.log.DebugContext(ctx, "meaning suggested",
		slog.String("word", req.Word),
		slog.Int("candidates", len(result.Candidates)),
	)
	return result, nil
}

// SuggestExample asks for one natural example sentence using the word.
func (c *Client) SuggestExample(ctx context.Context, secret string, req provider.ExampleRequest) (string, error) {
	return c.completeLine(ctx, secret, examplePrompt(req))
}

// SuggestIPA asks for the IPA transcription of the word.
func (c *Client) SuggestIPA(ctx context.Context, secret string, req provider.IPARequest) (string, error) {
	return c.completeLine(ctx, secret, ipaPrompt(req))
}

// Translate asks for a plain translation of free text.
func (c *Client) Translate(ctx context.Context, secret string, req provider.TranslateRequest) (string, error) {
	return c.completeLine(ctx, secret, translatePrompt(req))
}

// completeLine runs a prompt expecting a single bare line of output.
func (c *Client) completeLine(ctx context.Context, secret, prompt string) (string, error) {
	raw, err := c.complete(ctx, secret, prompt)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(raw)
	if line == "" {
		return "", provider.NewError(provider.KindMalformed, fmt.Errorf("empty response"))
	}
	// Keep the first line only; models occasionally append commentary.
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return line, nil
}

// complete issues one Messages API call. Every failure is normalized into
// a *provider.Error before it leaves this package.
func (c *Client) complete(ctx context.Context, secret, prompt string) (string, error) {
	client := c.newClient(secret)

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(err)
	}

	if len(msg.Content) == 0 {
		return "", provider.NewError(provider.KindMalformed, fmt.Errorf("empty message content"))
	}
	return msg.Content[0].Text, nil
}

// parseMeaning decodes the strict-JSON meaning response. Anything the
// model wrapped around the object (prose, markdown fences) is discarded.
func parseMeaning(word, raw string) (*provider.MeaningResult, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, provider.NewError(provider.KindMalformed, err)
	}

	var payload struct {
		ContextSentenceVi string `json:"context_sentence_vi"`
		Candidates        []struct {
			Vi   string   `json:"vi"`
			Pos  string   `json:"pos"`
			Back []string `json:"back"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, provider.NewError(provider.KindMalformed, fmt.Errorf("decode meaning json: %w", err))
	}

	result := &provider.MeaningResult{
		Word:              word,
		ContextSentenceVi: strings.TrimSpace(payload.ContextSentenceVi),
	}
	for _, cand := range payload.Candidates {
		vi := strings.TrimSpace(cand.Vi)
		if vi == "" {
			continue
		}
		out := provider.CandidateResult{Vi: vi, Back: cand.Back}
		if pos := strings.TrimSpace(cand.Pos); pos != "" {
			out.Pos = &pos
		}
		result.Candidates = append(result.Candidates, out)
	}

	if len(result.Candidates) == 0 {
		return nil, provider.NewError(provider.KindMalformed, fmt.Errorf("no candidates for %q", word))
	}

	return result, nil
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	out := s[start : end+1]
	if !json.Valid([]byte(out)) {
		return "", fmt.Errorf("response does not contain valid JSON")
	}
	return out, nil
}
