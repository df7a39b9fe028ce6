package storefront

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHydrate(n *atomic.Int32) HydrateFunc {
	return func(context.Context, string) *Visitor {
		n.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &Visitor{}
	}
}

func TestAcquire_HydratesOnce(t *testing.T) {
	var hydrations atomic.Int32
	r := NewRegistry(countingHydrate(&hydrations), time.Minute, time.Hour)
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, release := r.Acquire(context.Background(), "v1")
			assert.Equal(t, "v1", v.ID)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), hydrations.Load())
	assert.Equal(t, 1, r.Len())
}

func TestEvictIdle_SkipsBusyAndRecent(t *testing.T) {
	var hydrations atomic.Int32
	r := NewRegistry(countingHydrate(&hydrations), time.Minute, time.Hour)
	defer r.Close()
	ctx := context.Background()

	_, release := r.Acquire(ctx, "idle")
	release()
	busy, releaseBusy := r.Acquire(ctx, "busy")
	_, release = r.Acquire(ctx, "in-flight")
	release()

	r.mu.RLock()
	r.visitors["in-flight"].authCancel = func() {}
	r.mu.RUnlock()

	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	r.evictIdle()

	assert.Equal(t, 2, r.Len())
	r.mu.RLock()
	_, idleKept := r.visitors["idle"]
	_, busyKept := r.visitors["busy"]
	r.mu.RUnlock()
	assert.False(t, idleKept)
	assert.True(t, busyKept)
	assert.False(t, busy.evicted)
	releaseBusy()
}

func TestAcquire_RetriesEvictedVisitor(t *testing.T) {
	var hydrations atomic.Int32
	r := NewRegistry(countingHydrate(&hydrations), time.Minute, time.Hour)
	defer r.Close()
	ctx := context.Background()

	first, release := r.Acquire(ctx, "v1")
	release()

	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	r.evictIdle()
	require.True(t, first.evicted)

	second, release := r.Acquire(ctx, "v1")
	release()
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), hydrations.Load())
}

func TestClose_StopsSweeper(t *testing.T) {
	r := NewRegistry(func(context.Context, string) *Visitor { return &Visitor{} }, time.Minute, time.Millisecond)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}
