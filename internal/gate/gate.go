// Package gate bounds in-flight AI calls per credential.
//
// Each credential gets a counting semaphore whose capacity is the
// process-wide concurrency setting. Resizing the setting applies to future
// acquisitions only; slots already held are honored to completion.
package gate

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Gate is a per-credential concurrency limiter.
//
// For every Acquire that returns successfully there must be exactly one
// call of the returned release func, on every exit path. Release closures
// stay valid after the credential is dropped from the gate, so callers
// can always release a slot they hold.
type Gate struct {
	mu    sync.Mutex
	limit int
	creds map[uuid.UUID]*credGate
}

type credGate struct {
	parent  *Gate
	held    int
	waiters []chan struct{}
}

// New creates a Gate with the given per-credential slot limit.
// A limit below 1 is clamped to 1.
func New(limit int) *Gate {
	if limit < 1 {
		limit = 1
	}
	return &Gate{
		limit: limit,
		creds: make(map[uuid.UUID]*credGate),
	}
}

// Limit returns the current per-credential slot limit.
func (g *Gate) Limit() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limit
}

// SetLimit changes the per-credential slot limit. Growing the limit wakes
// queued waiters; shrinking never evicts current holders, it only blocks
// new acquisitions until enough slots are released.
func (g *Gate) SetLimit(n int) {
	if n < 1 {
		n = 1
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limit = n
	for _, cg := range g.creds {
		cg.wakeLocked()
	}
}

// Acquire blocks until a slot for the credential is free or ctx is done.
// On success it returns a release func that must be called exactly once.
// On cancellation it returns ctx.Err() without holding a slot.
func (g *Gate) Acquire(ctx context.Context, credentialID uuid.UUID) (func(), error) {
	g.mu.Lock()
	cg := g.creds[credentialID]
	if cg == nil {
		cg = &credGate{parent: g}
		g.creds[credentialID] = cg
	}

	if cg.held < g.limit {
		cg.held++
		g.mu.Unlock()
		return cg.releaseOnce(), nil
	}

	// Queue up. The slot is counted as held at hand-off time (wakeLocked),
	// so a signaled waiter already owns its slot.
	ch := make(chan struct{}, 1)
	cg.waiters = append(cg.waiters, ch)
	g.mu.Unlock()

	select {
	case <-ch:
		return cg.releaseOnce(), nil
	case <-ctx.Done():
		g.mu.Lock()
		// The hand-off may have raced the cancellation: if the channel was
		// already signaled we own a slot and must pass it on.
		select {
		case <-ch:
			cg.held--
			cg.wakeLocked()
		default:
			cg.removeWaiterLocked(ch)
		}
		g.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Drop forgets the credential's gate state for future acquisitions.
// Queued waiters are woken as slots free up; holders finish normally.
func (g *Gate) Drop(credentialID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.creds, credentialID)
}

// Held reports the number of slots currently held for the credential.
func (g *Gate) Held(credentialID uuid.UUID) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cg := g.creds[credentialID]; cg != nil {
		return cg.held
	}
	return 0
}

// releaseOnce returns a release closure that is safe to call at most once.
// The sync.Once guards against double release from racy cleanup paths.
func (cg *credGate) releaseOnce() func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			g := cg.parent
			g.mu.Lock()
			cg.held--
			cg.wakeLocked()
			g.mu.Unlock()
		})
	}
}

// wakeLocked hands free slots to queued waiters in FIFO order.
// Caller must hold g.mu.
func (cg *credGate) wakeLocked() {
	for len(cg.waiters) > 0 && cg.held < cg.parent.limit {
		ch := cg.waiters[0]
		cg.waiters = cg.waiters[1:]
		cg.held++
		ch <- struct{}{}
	}
}

// removeWaiterLocked unlinks a cancelled waiter. Caller must hold g.mu.
func (cg *credGate) removeWaiterLocked(ch chan struct{}) {
	for i, w := range cg.waiters {
		if w == ch {
			cg.waiters = append(cg.waiters[:i], cg.waiters[i+1:]...)
			return
		}
	}
}
