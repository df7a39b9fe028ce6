// Package storefront owns the per-visitor stores and the actions the API
// dispatches against them.
package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/marte1309/PinkBlueberrySalon/internal/auth"
	"github.com/marte1309/PinkBlueberrySalon/internal/booking"
	"github.com/marte1309/PinkBlueberrySalon/internal/cart"
	"github.com/marte1309/PinkBlueberrySalon/internal/checkout"
	"github.com/marte1309/PinkBlueberrySalon/internal/customer"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTTL is how long an untouched visitor stays in memory.
	DefaultIdleTTL = 30 * time.Minute

	// DefaultSweepInterval is how often idle visitors are evicted.
	DefaultSweepInterval = time.Minute
)

// Visitor is one visitor's set of stores. All access goes through the
// visitor lock; mutations of one visitor never interleave.
type Visitor struct {
	ID       string
	Cart     *cart.Ledger
	Booking  *booking.Draft
	Checkout *checkout.Wizard
	Session  *auth.Session
	Customer *customer.Profile

	mu       sync.Mutex
	lastSeen time.Time
	evicted  bool

	// in-flight auth call, cancelled by the next login, register or logout
	authCancel context.CancelFunc
	authSeq    uint64
}

// HydrateFunc builds a visitor's stores from its snapshot.
type HydrateFunc func(ctx context.Context, visitorID string) *Visitor

// Registry keeps hydrated visitors in memory and evicts idle ones. Stores
// persist on every mutation, so an evicted visitor rehydrates unchanged.
type Registry struct {
	mu       sync.RWMutex
	visitors map[string]*Visitor
	group    singleflight.Group
	hydrate  HydrateFunc
	idleTTL  time.Duration
	now      func() time.Time

	stopCleanup chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

func NewRegistry(hydrate HydrateFunc, idleTTL, sweepInterval time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	r := &Registry{
		visitors:    make(map[string]*Visitor),
		hydrate:     hydrate,
		idleTTL:     idleTTL,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop(sweepInterval)

	return r
}

// Acquire returns the visitor locked. The caller must call release.
func (r *Registry) Acquire(ctx context.Context, visitorID string) (v *Visitor, release func()) {
	for {
		v = r.get(ctx, visitorID)
		v.mu.Lock()
		if v.evicted {
			// lost a race with the sweeper; the map no longer holds v
			v.mu.Unlock()
			continue
		}
		v.lastSeen = r.now()
		return v, v.mu.Unlock
	}
}

func (r *Registry) get(ctx context.Context, visitorID string) *Visitor {
	r.mu.RLock()
	v, ok := r.visitors[visitorID]
	r.mu.RUnlock()
	if ok {
		return v
	}

	res, _, _ := r.group.Do(visitorID, func() (any, error) {
		r.mu.RLock()
		existing, ok := r.visitors[visitorID]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}

		// hydration must not be cut short by the first caller's request
		hv := r.hydrate(context.WithoutCancel(ctx), visitorID)
		hv.ID = visitorID
		hv.lastSeen = r.now()

		r.mu.Lock()
		r.visitors[visitorID] = hv
		r.mu.Unlock()
		return hv, nil
	})
	return res.(*Visitor)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.visitors)
}

func (r *Registry) cleanupLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops visitors untouched for idleTTL. A visitor that is busy
// right now is skipped until the next sweep.
func (r *Registry) evictIdle() {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, v := range r.visitors {
		if !v.mu.TryLock() {
			continue
		}
		if v.lastSeen.Before(cutoff) && v.authCancel == nil {
			v.evicted = true
			delete(r.visitors, id)
			evicted++
		}
		v.mu.Unlock()
	}
	if evicted > 0 {
		zap.L().Debug("evicted idle visitors", zap.Int("count", evicted), zap.Int("remaining", len(r.visitors)))
	}
}

// Close stops the background eviction and waits for it to finish.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopCleanup)
	})
	r.wg.Wait()
	return nil
}
