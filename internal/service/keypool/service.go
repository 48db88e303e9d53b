// Package keypool manages the pool of API credentials for the external AI
// text service: which keys exist, which one is active for single-key
// operations, and the process-wide per-key concurrency limit.
package keypool

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// Settings keys persisted through the setting repo.
const (
	settingActiveCredential = "active_credential"
	settingAIConcurrency    = "ai_concurrency"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type credentialRepo interface {
	List(ctx context.Context) ([]domain.Credential, error)
	Create(ctx context.Context, cred domain.Credential) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type settingRepo interface {
	Get(ctx context.Context, key string) (string, error) // domain.ErrNotFound if absent
	Set(ctx context.Context, key, value string) error
	Unset(ctx context.Context, key string) error
}

type slotGate interface {
	SetLimit(n int)
	Drop(credentialID uuid.UUID)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service is the credential pool. Every mutation writes through the repos
// before the in-memory snapshot changes, so a restart reloads the same
// pool state.
type Service struct {
	log      *slog.Logger
	creds    credentialRepo
	settings settingRepo
	gate     slotGate

	mu          sync.RWMutex
	pool        []domain.Credential // ordered by Position
	activeID    *uuid.UUID
	concurrency int
}

// NewService creates the pool service. Call Load before serving requests.
func NewService(logger *slog.Logger, creds credentialRepo, settings settingRepo, gate slotGate, defaultConcurrency int) *Service {
	if defaultConcurrency < 1 {
		defaultConcurrency = 1
	}
	return &Service{
		log:         logger.With("service", "keypool"),
		creds:       creds,
		settings:    settings,
		gate:        gate,
		concurrency: defaultConcurrency,
	}
}

// Load initializes the pool from persisted state. The persisted active id
// is dropped if it no longer references an existing credential.
func (s *Service) Load(ctx context.Context) error {
	pool, err := s.creds.List(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Position < pool[j].Position })

	var activeID *uuid.UUID
	if raw, err := s.settings.Get(ctx, settingActiveCredential); err == nil {
		if id, perr := uuid.Parse(raw); perr == nil {
			for _, c := range pool {
				if c.ID == id {
					activeID = &id
					break
				}
			}
		}
	}
	// Fallback: a non-empty pool always has an active key.
	if activeID == nil && len(pool) > 0 {
		id := pool[0].ID
		activeID = &id
	}

	concurrency := s.concurrency
	if raw, err := s.settings.Get(ctx, settingAIConcurrency); err == nil {
		if n, perr := strconv.Atoi(raw); perr == nil && n >= 1 {
			concurrency = n
		}
	}

	s.mu.Lock()
	s.pool = pool
	s.activeID = activeID
	s.concurrency = concurrency
	s.mu.Unlock()

	s.gate.SetLimit(concurrency)

	s.log.InfoContext(ctx, "credential pool loaded",
		slog.Int("credentials", len(pool)),
		slog.Int("concurrency", concurrency),
		slog.Bool("has_active", activeID != nil),
	)
	return nil
}

// AddCredential appends a new credential to the pool. If the pool was
// empty the new credential becomes active.
func (s *Service) AddCredential(ctx context.Context, input AddCredentialInput) (uuid.UUID, error) {
	if err := input.Validate(); err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := input.Name
	if name == "" {
		name = fmt.Sprintf("key-%d", len(s.pool)+1)
	}

	// Positions are not reused after deletes, so append past the tail's
	// position rather than at len(pool).
	position := 0
	if n := len(s.pool); n > 0 {
		position = s.pool[n-1].Position + 1
	}

	cred := domain.Credential{
		ID:        uuid.New(),
		Name:      name,
		Secret:    input.Secret,
		Position:  position,
		CreatedAt: time.Now(),
	}

	if err := s.creds.Create(ctx, cred); err != nil {
		return uuid.Nil, fmt.Errorf("create credential: %w", err)
	}

	// Both writes land before the snapshot changes. If activation cannot
	// be persisted the create is rolled back, so a returned error means
	// the key does not exist.
	wasEmpty := len(s.pool) == 0
	if wasEmpty {
		if err := s.settings.Set(ctx, settingActiveCredential, cred.ID.String()); err != nil {
			if derr := s.creds.Delete(ctx, cred.ID); derr != nil {
				s.log.ErrorContext(ctx, "rollback credential create failed",
					slog.String("credential_id", cred.ID.String()),
					slog.String("error", derr.Error()),
				)
			}
			return uuid.Nil, fmt.Errorf("persist active credential: %w", err)
		}
	}

	s.pool = append(s.pool, cred)
	if wasEmpty {
		id := cred.ID
		s.activeID = &id
	}

	s.log.InfoContext(ctx, "credential added",
		slog.String("credential_id", cred.ID.String()),
		slog.String("name", cred.Name),
		slog.Bool("became_active", wasEmpty),
	)
	return cred.ID, nil
}

// DeleteCredential removes a credential from future selection. In-flight
// requests that already hold a slot on it are allowed to finish. If it was
// active, the previous credential in pool order becomes active (or the
// first remaining one when the head was deleted, or none when the pool is
// now empty).
func (s *Service) DeleteCredential(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.pool {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("credential %s: %w", id, domain.ErrNotFound)
	}

	if err := s.creds.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	s.pool = append(s.pool[:idx], s.pool[idx+1:]...)

	if s.activeID != nil && *s.activeID == id {
		var next *uuid.UUID
		if len(s.pool) > 0 {
			succ := idx - 1
			if succ < 0 {
				succ = 0
			}
			nid := s.pool[succ].ID
			next = &nid
		}
		if next != nil {
			if err := s.settings.Set(ctx, settingActiveCredential, next.String()); err != nil {
				return fmt.Errorf("persist active credential: %w", err)
			}
		} else if err := s.settings.Unset(ctx, settingActiveCredential); err != nil {
			return fmt.Errorf("clear active credential: %w", err)
		}
		s.activeID = next
	}

	s.gate.Drop(id)

	s.log.InfoContext(ctx, "credential deleted", slog.String("credential_id", id.String()))
	return nil
}

// SetActive marks a credential as the one single-key operations use.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, c := range s.pool {
		if c.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("credential %s: %w", id, domain.ErrNotFound)
	}

	if err := s.settings.Set(ctx, settingActiveCredential, id.String()); err != nil {
		return fmt.Errorf("persist active credential: %w", err)
	}
	s.activeID = &id

	s.log.InfoContext(ctx, "active credential changed", slog.String("credential_id", id.String()))
	return nil
}

// MaskedPool is the caller-visible pool state. Secrets never appear here.
type MaskedPool struct {
	ActiveID *uuid.UUID
	Items    []domain.MaskedCredential
}

// ListMasked returns the pool with display-safe secrets.
func (s *Service) ListMasked() MaskedPool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := MaskedPool{Items: make([]domain.MaskedCredential, 0, len(s.pool))}
	if s.activeID != nil {
		id := *s.activeID
		out.ActiveID = &id
	}
	for _, c := range s.pool {
		out.Items = append(out.Items, domain.MaskedCredential{
			ID:     c.ID,
			Name:   c.Name,
			Masked: c.Masked(),
		})
	}
	return out
}

// HasKey reports whether any credential is configured.
func (s *Service) HasKey() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pool) > 0
}

// Concurrency returns the current per-credential concurrency limit.
func (s *Service) Concurrency() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.concurrency
}

// SetConcurrency persists the per-credential limit and resizes every gate.
// Slots already held are honored; only future acquisitions see the change.
func (s *Service) SetConcurrency(ctx context.Context, n int) error {
	if n < 1 {
		return domain.NewValidationError("concurrency", "must be >= 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settings.Set(ctx, settingAIConcurrency, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("persist concurrency: %w", err)
	}
	s.concurrency = n
	s.gate.SetLimit(n)

	s.log.InfoContext(ctx, "ai concurrency changed", slog.Int("concurrency", n))
	return nil
}

// OrderedCredentials returns a copy of the pool in fallback order,
// including secrets. For the dispatcher only; never expose to transport.
func (s *Service) OrderedCredentials() []domain.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Credential, len(s.pool))
	copy(out, s.pool)
	return out
}

// ActiveCredential returns the active credential with its secret, for the
// dispatcher's single-key operations.
func (s *Service) ActiveCredential() (domain.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == nil {
		return domain.Credential{}, false
	}
	for _, c := range s.pool {
		if c.ID == *s.activeID {
			return c, true
		}
	}
	return domain.Credential{}, false
}
