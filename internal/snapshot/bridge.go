package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/marte1309/PinkBlueberrySalon/pkg/logger"
	"go.uber.org/zap"
)

// writeTimeout bounds a snapshot write once it is detached from the caller.
const writeTimeout = 5 * time.Second

// FailureHook is told about every swallowed snapshot failure, by operation
// (load, save, remove).
type FailureHook func(op string)

// Bridge is one visitor's view of the snapshot store. Persistence problems
// never reach the caller: reads fall back to "no snapshot" and writes are
// logged and dropped.
type Bridge struct {
	store     Store
	visitorID string
	onFailure FailureHook
}

func NewBridge(store Store, visitorID string, onFailure FailureHook) *Bridge {
	return &Bridge{store: store, visitorID: visitorID, onFailure: onFailure}
}

func (b *Bridge) VisitorID() string {
	return b.visitorID
}

// Load decodes the snapshot under key into dst and reports whether it did.
func (b *Bridge) Load(ctx context.Context, key Key, dst any) bool {
	data, err := b.store.Get(ctx, storageKey(b.visitorID, key))
	if errors.Is(err, ErrSnapshotMiss) {
		return false
	}
	if err != nil {
		b.fail(ctx, "load", key, err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		b.fail(ctx, "load", key, err)
		return false
	}
	return true
}

// LoadString reads a snapshot holding a bare string value.
func (b *Bridge) LoadString(ctx context.Context, key Key) (string, bool) {
	var s string
	if !b.Load(ctx, key, &s) {
		return "", false
	}
	return s, true
}

// Save persists v under key. The write outlives a cancelled caller: the
// in-memory store has already changed and the snapshot must follow it.
func (b *Bridge) Save(ctx context.Context, key Key, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		b.fail(ctx, "save", key, err)
		return
	}
	writeCtx, cancel := detach(ctx)
	defer cancel()
	if err := b.store.Set(writeCtx, storageKey(b.visitorID, key), data); err != nil {
		b.fail(ctx, "save", key, err)
	}
}

func (b *Bridge) Remove(ctx context.Context, keys ...Key) {
	if len(keys) == 0 {
		return
	}
	storeKeys := make([]string, len(keys))
	for i, k := range keys {
		storeKeys[i] = storageKey(b.visitorID, k)
	}
	writeCtx, cancel := detach(ctx)
	defer cancel()
	if err := b.store.Delete(writeCtx, storeKeys...); err != nil {
		b.fail(ctx, "remove", keys[0], err)
	}
}

func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
}

func (b *Bridge) fail(ctx context.Context, op string, key Key, err error) {
	logger.FromContext(ctx).Warn("snapshot "+op+" failed",
		zap.String("visitor_id", b.visitorID),
		zap.String("key", string(key)),
		zap.Error(err))
	if b.onFailure != nil {
		b.onFailure(op)
	}
}
