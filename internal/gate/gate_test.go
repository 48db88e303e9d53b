package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAcquireRelease(t *testing.T) {
	t.Parallel()

	g := New(2)
	cred := uuid.New()

	rel1, err := g.Acquire(context.Background(), cred)
	if err != nil {
		t.Fatalf("acquire 1: %v", err)
	}
	rel2, err := g.Acquire(context.Background(), cred)
	if err != nil {
		t.Fatalf("acquire 2: %v", err)
	}
	if got := g.Held(cred); got != 2 {
		t.Errorf("expected 2 held, got %d", got)
	}

	rel1()
	rel2()
	if got := g.Held(cred); got != 0 {
		t.Errorf("expected 0 held after release, got %d", got)
	}
}

func TestSlotConservation(t *testing.T) {
	t.Parallel()

	const limit = 3
	const workers = 30

	g := New(limit)
	cred := uuid.New()

	var inFlight atomic.Int32
	var peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := g.Acquire(context.Background(), cred)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer release()

			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > limit {
		t.Errorf("concurrency peak %d exceeded limit %d", p, limit)
	}
	if got := g.Held(cred); got != 0 {
		t.Errorf("expected all slots released, got %d held", got)
	}
}

func TestReleaseExactlyOnce(t *testing.T) {
	t.Parallel()

	g := New(1)
	cred := uuid.New()

	release, err := g.Acquire(context.Background(), cred)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	release()
	release() // second call must be a no-op

	if got := g.Held(cred); got != 0 {
		t.Errorf("double release corrupted held count: %d", got)
	}
}

func TestAcquireCancelledWhileWaiting(t *testing.T) {
	t.Parallel()

	g := New(1)
	cred := uuid.New()

	release, err := g.Acquire(context.Background(), cred)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := g.Acquire(ctx, cred)
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected cancellation error, got nil")
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled waiter did not return")
	}

	// The held slot was never taken from its owner.
	if got := g.Held(cred); got != 1 {
		t.Errorf("expected 1 held, got %d", got)
	}
	release()
}

func TestResizeGrowAdmitsWaiters(t *testing.T) {
	t.Parallel()

	g := New(1)
	cred := uuid.New()

	release, err := g.Acquire(context.Background(), cred)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	acquired := make(chan func(), 2)
	for i := 0; i < 2; i++ {
		go func() {
			rel, err := g.Acquire(context.Background(), cred)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			acquired <- rel
		}()
	}

	time.Sleep(10 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("waiter admitted before resize")
	default:
	}

	g.SetLimit(3)

	for i := 0; i < 2; i++ {
		select {
		case rel := <-acquired:
			defer rel()
		case <-time.After(time.Second):
			t.Fatal("waiter not admitted after growing the limit")
		}
	}
	release()
}

func TestResizeShrinkKeepsHolders(t *testing.T) {
	t.Parallel()

	g := New(3)
	cred := uuid.New()

	var releases []func()
	for i := 0; i < 3; i++ {
		rel, err := g.Acquire(context.Background(), cred)
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		releases = append(releases, rel)
	}

	g.SetLimit(1)

	// Holders are not evicted.
	if got := g.Held(cred); got != 3 {
		t.Errorf("expected 3 held after shrink, got %d", got)
	}

	// New acquisitions block until held drops below the new limit.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := g.Acquire(ctx, cred); err == nil {
		t.Fatal("expected acquire to block at shrunk limit")
	}

	for _, rel := range releases {
		rel()
	}

	rel, err := g.Acquire(context.Background(), cred)
	if err != nil {
		t.Fatalf("acquire after drain: %v", err)
	}
	rel()
}

func TestReleaseAfterDrop(t *testing.T) {
	t.Parallel()

	g := New(1)
	cred := uuid.New()

	release, err := g.Acquire(context.Background(), cred)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	g.Drop(cred)

	// Releasing a slot on a dropped credential must not panic; the holder
	// simply finishes.
	release()

	if got := g.Held(cred); got != 0 {
		t.Errorf("expected 0 held for fresh gate state, got %d", got)
	}
}

func TestIndependentCredentials(t *testing.T) {
	t.Parallel()

	g := New(1)
	a, b := uuid.New(), uuid.New()

	relA, err := g.Acquire(context.Background(), a)
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}

	// Credential b's gate is independent of a's.
	relB, err := g.Acquire(context.Background(), b)
	if err != nil {
		t.Fatalf("acquire b: %v", err)
	}

	relA()
	relB()
}
