package enrichment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// Registry tracks cancellable in-flight requests by caller-supplied id.
//
// Duplicate policy: a requestId that is still active is rejected with
// ErrDuplicateRequest; the UI must settle or cancel the first request
// before reusing its id.
type Registry struct {
	mu     sync.Mutex
	active map[string]*inflight
}

type inflight struct {
	cancel    context.CancelFunc
	startedAt time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*inflight)}
}

// Begin registers a request and returns a context that Cancel fires, plus
// an end closure the caller must invoke exactly once when the request
// settles. The closure is bound to this registration: if Cancel freed the
// id and a retry re-registered it, ending the old dispatch leaves the
// retry untouched.
func (r *Registry) Begin(ctx context.Context, requestID string) (context.Context, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.active[requestID]; exists {
		return nil, nil, fmt.Errorf("request %q: %w", requestID, domain.ErrDuplicateRequest)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	entry := &inflight{cancel: cancel, startedAt: time.Now()}
	r.active[requestID] = entry

	end := func() {
		r.mu.Lock()
		if cur, ok := r.active[requestID]; ok && cur == entry {
			delete(r.active, requestID)
		}
		r.mu.Unlock()
		entry.cancel()
	}
	return reqCtx, end, nil
}

// Cancel fires the request's cancellation signal. Cancelling an unknown or
// already-settled id is a harmless no-op returning false; calling Cancel
// twice returns false the second time.
func (r *Registry) Cancel(requestID string) bool {
	r.mu.Lock()
	entry, ok := r.active[requestID]
	if ok {
		delete(r.active, requestID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	entry.cancel()
	return true
}

// Len reports the number of in-flight requests.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
