package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
	"github.com/hieunguyen/vocabdeck/internal/provider"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockCredSource struct {
	pool   []domain.Credential
	active *domain.Credential
}

func (m *mockCredSource) OrderedCredentials() []domain.Credential {
	return m.pool
}

func (m *mockCredSource) ActiveCredential() (domain.Credential, bool) {
	if m.active == nil {
		return domain.Credential{}, false
	}
	return *m.active, true
}

// mockSlotGate admits everything and records acquire/release pairing.
type mockSlotGate struct {
	mu       sync.Mutex
	acquired []uuid.UUID
	released int
}

func (m *mockSlotGate) Acquire(ctx context.Context, credentialID uuid.UUID) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.acquired = append(m.acquired, credentialID)
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.released++
			m.mu.Unlock()
		})
	}, nil
}

type mockProvider struct {
	mu           sync.Mutex
	secretsSeen  []string
	meaningFunc  func(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error)
	exampleFunc  func(ctx context.Context, secret string, req provider.ExampleRequest) (string, error)
	ipaFunc      func(ctx context.Context, secret string, req provider.IPARequest) (string, error)
	translateFun func(ctx context.Context, secret string, req provider.TranslateRequest) (string, error)
}

func (m *mockProvider) record(secret string) {
	m.mu.Lock()
	m.secretsSeen = append(m.secretsSeen, secret)
	m.mu.Unlock()
}

func (m *mockProvider) SuggestMeaning(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error) {
	m.record(secret)
	if m.meaningFunc != nil {
		return m.meaningFunc(ctx, secret, req)
	}
	return &provider.MeaningResult{
		Word:              req.Word,
		ContextSentenceVi: "câu ví dụ",
		Candidates:        []provider.CandidateResult{{Vi: "nghĩa"}},
	}, nil
}

func (m *mockProvider) SuggestExample(ctx context.Context, secret string, req provider.ExampleRequest) (string, error) {
	m.record(secret)
	if m.exampleFunc != nil {
		return m.exampleFunc(ctx, secret, req)
	}
	return "An example sentence.", nil
}

func (m *mockProvider) SuggestIPA(ctx context.Context, secret string, req provider.IPARequest) (string, error) {
	m.record(secret)
	if m.ipaFunc != nil {
		return m.ipaFunc(ctx, secret, req)
	}
	return "/wɜːd/", nil
}

func (m *mockProvider) Translate(ctx context.Context, secret string, req provider.TranslateRequest) (string, error) {
	m.record(secret)
	if m.translateFun != nil {
		return m.translateFun(ctx, secret, req)
	}
	return "bản dịch", nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newCred(name string) domain.Credential {
	return domain.Credential{
		ID:     uuid.New(),
		Name:   name,
		Secret: "sk-secret-" + name,
	}
}

func newTestDispatcher(creds *mockCredSource, gate *mockSlotGate, ai *mockProvider) *Dispatcher {
	return NewDispatcher(testLogger(), creds, gate, ai, NewRegistry(), time.Second)
}

func meaningReq() provider.MeaningRequest {
	return provider.MeaningRequest{Word: "ubiquitous", SourceSentence: "Smartphones are ubiquitous.", From: "en", To: "vi"}
}

// ---------------------------------------------------------------------------
// AutoMeaning
// ---------------------------------------------------------------------------

func TestAutoMeaning_FirstCredentialSucceeds(t *testing.T) {
	t.Parallel()

	a, b := newCred("a"), newCred("b")
	creds := &mockCredSource{pool: []domain.Credential{a, b}}
	gate := &mockSlotGate{}
	ai := &mockProvider{}
	d := newTestDispatcher(creds, gate, ai)

	res, err := d.AutoMeaning(context.Background(), "req-1", meaningReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RequestID != "req-1" || res.Word != "ubiquitous" {
		t.Errorf("unexpected result envelope: %+v", res)
	}
	if len(ai.secretsSeen) != 1 || ai.secretsSeen[0] != a.Secret {
		t.Errorf("expected one call with first credential, got %v", ai.secretsSeen)
	}
	if gate.released != len(gate.acquired) {
		t.Errorf("slot leak: acquired %d released %d", len(gate.acquired), gate.released)
	}
}

func TestAutoMeaning_FallsBackInPoolOrder(t *testing.T) {
	t.Parallel()

	a, b, c := newCred("a"), newCred("b"), newCred("c")
	creds := &mockCredSource{pool: []domain.Credential{a, b, c}}
	gate := &mockSlotGate{}
	ai := &mockProvider{
		meaningFunc: func(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error) {
			if secret != c.Secret {
				return nil, provider.NewError(provider.KindRateLimited, errors.New("429"))
			}
			return &provider.MeaningResult{Word: req.Word, Candidates: []provider.CandidateResult{{Vi: "phổ biến"}}}, nil
		},
	}
	d := newTestDispatcher(creds, gate, ai)

	res, err := d.AutoMeaning(context.Background(), "req-1", meaningReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MeaningSuggested != "phổ biến" {
		t.Errorf("unexpected suggestion %q", res.MeaningSuggested)
	}

	want := []string{a.Secret, b.Secret, c.Secret}
	if len(ai.secretsSeen) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(ai.secretsSeen))
	}
	for i, s := range want {
		if ai.secretsSeen[i] != s {
			t.Errorf("attempt %d used wrong credential", i)
		}
	}
	if gate.released != 3 {
		t.Errorf("every attempt must release its slot, released %d", gate.released)
	}
}

func TestAutoMeaning_ExhaustionWrapsLastCause(t *testing.T) {
	t.Parallel()

	creds := &mockCredSource{pool: []domain.Credential{newCred("a"), newCred("b")}}
	ai := &mockProvider{
		meaningFunc: func(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error) {
			return nil, provider.NewError(provider.KindQuota, errors.New("quota exceeded"))
		},
	}
	d := newTestDispatcher(creds, &mockSlotGate{}, ai)

	_, err := d.AutoMeaning(context.Background(), "req-1", meaningReq())
	if !errors.Is(err, domain.ErrKeysExhausted) {
		t.Fatalf("expected ErrKeysExhausted, got %v", err)
	}
	if len(ai.secretsSeen) != 2 {
		t.Errorf("expected every credential tried, got %d attempts", len(ai.secretsSeen))
	}
}

func TestAutoMeaning_NonRecoverableAborts(t *testing.T) {
	t.Parallel()

	creds := &mockCredSource{pool: []domain.Credential{newCred("a"), newCred("b"), newCred("c")}}
	ai := &mockProvider{
		meaningFunc: func(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error) {
			return nil, provider.NewError(provider.KindBadRequest, errors.New("invalid model"))
		},
	}
	d := newTestDispatcher(creds, &mockSlotGate{}, ai)

	_, err := d.AutoMeaning(context.Background(), "req-1", meaningReq())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrKeysExhausted) {
		t.Error("non-recoverable failure must not look like exhaustion")
	}
	var perr *provider.Error
	if !errors.As(err, &perr) || perr.Kind != provider.KindBadRequest {
		t.Errorf("expected wrapped bad-request provider error, got %v", err)
	}
	if len(ai.secretsSeen) != 1 {
		t.Errorf("non-recoverable failure must abort after one attempt, got %d", len(ai.secretsSeen))
	}
}

func TestAutoMeaning_NoCredential(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(&mockCredSource{}, &mockSlotGate{}, &mockProvider{})

	_, err := d.AutoMeaning(context.Background(), "req-1", meaningReq())
	if !errors.Is(err, domain.ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}
}

func TestAutoMeaning_DuplicateRequestID(t *testing.T) {
	t.Parallel()

	creds := &mockCredSource{pool: []domain.Credential{newCred("a")}}
	started := make(chan struct{})
	release := make(chan struct{})
	var startedOnce sync.Once
	ai := &mockProvider{
		meaningFunc: func(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error) {
			startedOnce.Do(func() { close(started) })
			<-release
			return &provider.MeaningResult{Word: req.Word, Candidates: []provider.CandidateResult{{Vi: "x"}}}, nil
		},
	}
	d := newTestDispatcher(creds, &mockSlotGate{}, ai)

	done := make(chan error, 1)
	go func() {
		_, err := d.AutoMeaning(context.Background(), "req-1", meaningReq())
		done <- err
	}()
	<-started

	_, err := d.AutoMeaning(context.Background(), "req-1", meaningReq())
	if !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest while first is live, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	// Settled id is reusable.
	if _, err := d.AutoMeaning(context.Background(), "req-1", meaningReq()); err != nil {
		t.Errorf("settled id must be reusable: %v", err)
	}
}

func TestAutoMeaning_CancelMidCall(t *testing.T) {
	t.Parallel()

	creds := &mockCredSource{pool: []domain.Credential{newCred("a"), newCred("b")}}
	started := make(chan struct{})
	ai := &mockProvider{
		meaningFunc: func(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error) {
			close(started)
			<-ctx.Done()
			// Late result after cancellation must be discarded.
			return &provider.MeaningResult{Word: req.Word, Candidates: []provider.CandidateResult{{Vi: "stale"}}}, nil
		},
	}
	gate := &mockSlotGate{}
	d := newTestDispatcher(creds, gate, ai)

	done := make(chan error, 1)
	go func() {
		_, err := d.AutoMeaning(context.Background(), "req-1", meaningReq())
		done <- err
	}()
	<-started

	if !d.Cancel("req-1") {
		t.Error("expected Cancel to find the live request")
	}
	if err := <-done; !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(ai.secretsSeen) != 1 {
		t.Errorf("cancelled request must not fall back to further credentials, got %d attempts", len(ai.secretsSeen))
	}
	if gate.released != len(gate.acquired) {
		t.Errorf("slot leak on cancellation: acquired %d released %d", len(gate.acquired), gate.released)
	}
}

func TestAutoMeaning_SuggestionMirrorsTopCandidate(t *testing.T) {
	t.Parallel()

	pos := "adj"
	creds := &mockCredSource{pool: []domain.Credential{newCred("a")}}
	ai := &mockProvider{
		meaningFunc: func(ctx context.Context, secret string, req provider.MeaningRequest) (*provider.MeaningResult, error) {
			return &provider.MeaningResult{
				Word:              req.Word,
				ContextSentenceVi: "Điện thoại thông minh có mặt khắp nơi.",
				Candidates: []provider.CandidateResult{
					{Vi: "có mặt khắp nơi", Pos: &pos, Back: []string{"omnipresent"}},
					{Vi: "phổ biến"},
				},
			}, nil
		},
	}
	d := newTestDispatcher(creds, &mockSlotGate{}, ai)

	res, err := d.AutoMeaning(context.Background(), "req-1", meaningReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MeaningSuggested != res.Candidates[0].Vi {
		t.Errorf("suggestion %q must mirror top candidate %q", res.MeaningSuggested, res.Candidates[0].Vi)
	}
	if len(res.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(res.Candidates))
	}
	if res.Candidates[0].Pos == nil || *res.Candidates[0].Pos != "adj" {
		t.Error("part of speech lost in shaping")
	}
	if res.ContextSentenceVi == "" {
		t.Error("context sentence lost in shaping")
	}
}

// ---------------------------------------------------------------------------
// Single-key operations
// ---------------------------------------------------------------------------

func TestSingleKey_UsesActiveCredentialOnly(t *testing.T) {
	t.Parallel()

	a, b := newCred("a"), newCred("b")
	creds := &mockCredSource{pool: []domain.Credential{a, b}, active: &b}
	gate := &mockSlotGate{}
	ai := &mockProvider{}
	d := newTestDispatcher(creds, gate, ai)

	out, err := d.IPA(context.Background(), provider.IPARequest{Word: "word"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Error("expected an IPA string")
	}
	if len(ai.secretsSeen) != 1 || ai.secretsSeen[0] != b.Secret {
		t.Errorf("expected single call with active credential, got %v", ai.secretsSeen)
	}
	if len(gate.acquired) != 1 || gate.acquired[0] != b.ID {
		t.Errorf("gate must see the active credential, got %v", gate.acquired)
	}
}

func TestSingleKey_NoFallbackOnFailure(t *testing.T) {
	t.Parallel()

	a, b := newCred("a"), newCred("b")
	creds := &mockCredSource{pool: []domain.Credential{a, b}, active: &a}
	ai := &mockProvider{
		exampleFunc: func(ctx context.Context, secret string, req provider.ExampleRequest) (string, error) {
			return "", provider.NewError(provider.KindRateLimited, errors.New("429"))
		},
	}
	d := newTestDispatcher(creds, &mockSlotGate{}, ai)

	_, err := d.Example(context.Background(), provider.ExampleRequest{Word: "word"})
	var perr *provider.Error
	if !errors.As(err, &perr) || perr.Kind != provider.KindRateLimited {
		t.Fatalf("expected rate-limited provider error, got %v", err)
	}
	if len(ai.secretsSeen) != 1 {
		t.Errorf("single-key operation must not fall back, got %d attempts", len(ai.secretsSeen))
	}
}

func TestSingleKey_NoActiveCredential(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(&mockCredSource{}, &mockSlotGate{}, &mockProvider{})

	if _, err := d.Translate(context.Background(), provider.TranslateRequest{Text: "hello"}); !errors.Is(err, domain.ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}
}
