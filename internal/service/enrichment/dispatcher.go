package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
	"github.com/hieunguyen/vocabdeck/internal/provider"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type credentialSource interface {
	// OrderedCredentials returns the pool in fallback order, with secrets.
	OrderedCredentials() []domain.Credential
	// ActiveCredential returns the key single-key operations use.
	ActiveCredential() (domain.Credential, bool)
}

type slotGate interface {
	Acquire(ctx context.Context, credentialID uuid.UUID) (func(), error)
}

type textProvider interface {
	SuggestMeaning(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error)
	SuggestExample(ctx context.Context, secret string, req provider.ExampleRequest) (string, error)
	SuggestIPA(ctx context.Context, secret string, req provider.IPARequest) (string, error)
	Translate(ctx context.Context, secret string, req provider.TranslateRequest) (string, error)
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher turns a logical enrichment operation into one or more
// external AI calls: it picks credentials, bounds them through the gate,
// applies the fallback loop for pooled operations, and normalizes every
// outcome into a domain error before it crosses the façade.
type Dispatcher struct {
	log      *slog.Logger
	creds    credentialSource
	gate     slotGate
	ai       textProvider
	registry *Registry
	timeout  time.Duration
}

// NewDispatcher creates a Dispatcher. timeout bounds a single attempt
// against one credential; a timed-out attempt is recoverable.
func NewDispatcher(logger *slog.Logger, creds credentialSource, gate slotGate, ai textProvider, registry *Registry, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:      logger.With("service", "dispatcher"),
		creds:    creds,
		gate:     gate,
		ai:       ai,
		registry: registry,
		timeout:  timeout,
	}
}

// AutoMeaning runs the pooled auto-meaning operation: every credential in
// pool order is a fallback candidate.
func (d *Dispatcher) AutoMeaning(ctx context.Context, requestID string, req provider.MeaningRequest) (*domain.EnrichmentResult, error) {
	reqCtx, end, err := d.registry.Begin(ctx, requestID)
	if err != nil {
		return nil, err
	}
	defer end()

	candidates := d.creds.OrderedCredentials()
	if len(candidates) == 0 {
		return nil, domain.ErrNoCredential
	}

	var lastErr error
	for _, cred := range candidates {
		res, err := d.attemptMeaning(reqCtx, cred, req)
		if err == nil {
			return buildResult(requestID, req.Word, res), nil
		}

		if errors.Is(err, domain.ErrCancelled) {
			d.log.DebugContext(ctx, "auto-meaning cancelled",
				slog.String("request_id", requestID),
				slog.String("word", req.Word),
			)
			return nil, domain.ErrCancelled
		}

		var perr *provider.Error
		if errors.As(err, &perr) && perr.Recoverable() {
			d.log.WarnContext(ctx, "credential attempt failed, trying next",
				slog.String("request_id", requestID),
				slog.String("credential_id", cred.ID.String()),
				slog.String("kind", string(perr.Kind)),
			)
			lastErr = perr
			continue
		}

		// Non-recoverable: abort without touching further credentials.
		return nil, fmt.Errorf("auto-meaning for %q: %w", req.Word, err)
	}

	return nil, fmt.Errorf("auto-meaning for %q: %w (last cause: %v)", req.Word, domain.ErrKeysExhausted, lastErr)
}

// attemptMeaning runs one gated attempt against one credential. The slot
// is released on every path out of this function.
func (d *Dispatcher) attemptMeaning(reqCtx context.Context, cred domain.Credential, req provider.MeaningRequest) (*provider.MeaningResult, error) {
	release, err := d.gate.Acquire(reqCtx, cred.ID)
	if err != nil {
		// The only way Acquire fails is the request context ending while
		// queued; no slot was consumed.
		return nil, domain.ErrCancelled
	}
	defer release()

	attemptCtx, cancel := context.WithTimeout(reqCtx, d.timeout)
	defer cancel()

	res, err := d.ai.SuggestMeaning(attemptCtx, cred.Secret, req)

	// A cancellation that lands mid-call wins over whatever the call
	// returned: discard the late result and report Cancelled.
	if reqCtx.Err() != nil {
		return nil, domain.ErrCancelled
	}
	return res, err
}

// Cancel signals the in-flight request, if any. Safe to call at any time;
// returns whether a live request was found.
func (d *Dispatcher) Cancel(requestID string) bool {
	return d.registry.Cancel(requestID)
}

// Example runs the single-key example-sentence operation.
func (d *Dispatcher) Example(ctx context.Context, req provider.ExampleRequest) (string, error) {
	return d.singleKey(ctx, "example", func(callCtx context.Context, secret string) (string, error) {
		return d.ai.SuggestExample(callCtx, secret, req)
	})
}

// IPA runs the single-key IPA-suggestion operation.
func (d *Dispatcher) IPA(ctx context.Context, req provider.IPARequest) (string, error) {
	return d.singleKey(ctx, "ipa", func(callCtx context.Context, secret string) (string, error) {
		return d.ai.SuggestIPA(callCtx, secret, req)
	})
}

// Translate runs the single-key plain-translation operation.
func (d *Dispatcher) Translate(ctx context.Context, req provider.TranslateRequest) (string, error) {
	return d.singleKey(ctx, "translate", func(callCtx context.Context, secret string) (string, error) {
		return d.ai.Translate(callCtx, secret, req)
	})
}

// singleKey runs one gated call against the active credential only.
// There is no fallback: these light operations either succeed on the
// active key or surface their error.
func (d *Dispatcher) singleKey(ctx context.Context, op string, call func(ctx context.Context, secret string) (string, error)) (string, error) {
	cred, ok := d.creds.ActiveCredential()
	if !ok {
		return "", domain.ErrNoCredential
	}

	release, err := d.gate.Acquire(ctx, cred.ID)
	if err != nil {
		return "", domain.ErrCancelled
	}
	defer release()

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	out, err := call(callCtx, cred.Secret)
	if ctx.Err() != nil {
		return "", domain.ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// buildResult shapes the provider result into the caller-facing form.
// MeaningSuggested always mirrors the top candidate.
func buildResult(requestID, word string, res *provider.MeaningResult) *domain.EnrichmentResult {
	out := &domain.EnrichmentResult{
		RequestID:         requestID,
		Word:              word,
		ContextSentenceVi: res.ContextSentenceVi,
		Candidates:        make([]domain.MeaningCandidate, 0, len(res.Candidates)),
	}
	for _, c := range res.Candidates {
		out.Candidates = append(out.Candidates, domain.MeaningCandidate{
			Vi:   c.Vi,
			Pos:  c.Pos,
			Back: c.Back,
		})
	}
	if len(out.Candidates) > 0 {
		out.MeaningSuggested = out.Candidates[0].Vi
	} else {
		// Best-effort fallback; the provider rejects empty candidate lists
		// so this only covers a misbehaving implementation.
		out.MeaningSuggested = res.ContextSentenceVi
	}
	return out
}
