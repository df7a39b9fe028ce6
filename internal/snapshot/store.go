package snapshot

import (
	"context"
	"errors"
	"fmt"
)

var ErrSnapshotMiss = errors.New("snapshot miss")

// Store is the key-value area visitor snapshots are written to.
// Get returns ErrSnapshotMiss for absent keys; Delete of absent keys is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Key names a store slice inside a visitor's snapshot area.
type Key string

const (
	KeyCart                Key = "cart"
	KeyBooking             Key = "currentBooking"
	KeyCheckout            Key = "checkout"
	KeyCustomerPreferences Key = "customerPreferences"
	KeyUser                Key = "user"
	KeyToken               Key = "token"
	KeyRefreshToken        Key = "refreshToken"
	KeyRememberEmail       Key = "rememberEmail"
)

func storageKey(visitorID string, key Key) string {
	return fmt.Sprintf("storefront:%s:%s", visitorID, key)
}
