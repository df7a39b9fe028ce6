package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedStore reads through a fast cache in front of a durable store.
// Writes go to the durable store first and then invalidate the cache entry.
type CachedStore struct {
	durable Store
	cache   Store
	sfg     singleflight.Group // Prevents cache stampede

	// mu orders backfills against writes; writes counts durable writes.
	mu     sync.Mutex
	writes uint64
}

const cacheTimeout = time.Second

func NewCachedStore(durable, cache Store) *CachedStore {
	return &CachedStore{durable: durable, cache: cache}
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		data, err := s.cache.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrSnapshotMiss) {
			zap.L().Warn("snapshot cache get failed", zap.String("key", key), zap.Error(err))
		}

		gen := s.generation()
		data, err = s.durable.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		s.backfill(ctx, key, data, gen)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *CachedStore) Set(ctx context.Context, key string, data []byte) error {
	if err := s.durable.Set(ctx, key, data); err != nil {
		return err
	}
	s.markWrite()
	s.invalidate(key)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, keys ...string) error {
	if err := s.durable.Delete(ctx, keys...); err != nil {
		return err
	}
	s.markWrite()
	s.invalidate(keys...)
	return nil
}

func (s *CachedStore) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *CachedStore) markWrite() {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
}

// backfill caches data read from the durable store unless a write landed
// after the read started; that write's invalidation may already have run.
func (s *CachedStore) backfill(ctx context.Context, key string, data []byte, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writes != gen {
		return
	}
	setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()
	if err := s.cache.Set(setCtx, key, data); err != nil {
		zap.L().Warn("snapshot cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CachedStore) invalidate(keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := s.cache.Delete(ctx, keys...); err != nil {
		zap.L().Warn("snapshot cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
