package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, []byte) error   { return f.err }
func (f failingStore) Delete(context.Context, ...string) error     { return f.err }

func TestBridge_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	b := NewBridge(store, "visitor-1", nil)

	type payload struct {
		Name string `json:"name"`
	}
	b.Save(ctx, KeyCart, payload{Name: "shampoo"})

	raw, err := store.Get(ctx, "storefront:visitor-1:cart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"shampoo"}`, string(raw))

	var got payload
	require.True(t, b.Load(ctx, KeyCart, &got))
	assert.Equal(t, "shampoo", got.Name)
}

func TestBridge_VisitorsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	NewBridge(store, "a", nil).Save(ctx, KeyToken, "tok-a")

	_, ok := NewBridge(store, "b", nil).LoadString(ctx, KeyToken)
	assert.False(t, ok)

	tok, ok := NewBridge(store, "a", nil).LoadString(ctx, KeyToken)
	require.True(t, ok)
	assert.Equal(t, "tok-a", tok)
}

func TestBridge_CorruptSnapshotFallsBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "storefront:v:checkout", []byte("{not json")))

	var failures []string
	b := NewBridge(store, "v", func(op string) { failures = append(failures, op) })

	var dst map[string]any
	assert.False(t, b.Load(ctx, KeyCheckout, &dst))
	assert.Equal(t, []string{"load"}, failures)
}

func TestBridge_MissIsNotAFailure(t *testing.T) {
	called := false
	b := NewBridge(NewMemoryStore(), "v", func(string) { called = true })

	var dst []int
	assert.False(t, b.Load(context.Background(), KeyCart, &dst))
	assert.False(t, called)
}

func TestBridge_StoreErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	var failures []string
	b := NewBridge(failingStore{err: errors.New("quota exceeded")}, "v", func(op string) {
		failures = append(failures, op)
	})

	var dst []int
	assert.False(t, b.Load(ctx, KeyCart, &dst))
	b.Save(ctx, KeyCart, []int{1})
	b.Remove(ctx, KeyUser, KeyToken)

	assert.Equal(t, []string{"load", "save", "remove"}, failures)
}

func TestBridge_Remove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	b := NewBridge(store, "v", nil)
	b.Save(ctx, KeyUser, map[string]string{"id": "u1"})
	b.Save(ctx, KeyToken, "t")
	b.Save(ctx, KeyRememberEmail, "a@b.c")

	b.Remove(ctx, KeyUser, KeyToken)

	assert.Equal(t, 1, store.Len())
	email, ok := b.LoadString(ctx, KeyRememberEmail)
	require.True(t, ok)
	assert.Equal(t, "a@b.c", email)
}

// ctxStore refuses work on a done context, like the network-backed stores.
type ctxStore struct{ *MemoryStore }

func (s ctxStore) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, key, data)
}

func (s ctxStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Delete(ctx, keys...)
}

func TestBridge_WritesOutliveCancelledCaller(t *testing.T) {
	store := ctxStore{NewMemoryStore()}
	var failures []string
	b := NewBridge(store, "v", func(op string) { failures = append(failures, op) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b.Save(ctx, KeyCart, []string{"shampoo"})
	b.Save(ctx, KeyToken, "t")
	b.Remove(ctx, KeyToken)

	assert.Empty(t, failures)
	var cart []string
	require.True(t, b.Load(context.Background(), KeyCart, &cart))
	assert.Equal(t, []string{"shampoo"}, cart)
	_, ok := b.LoadString(context.Background(), KeyToken)
	assert.False(t, ok)
}
