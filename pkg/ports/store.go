package ports

import "context"

// KVBackend defines raw key-value persistence for the local cache.
// Values are opaque bytes; serialisation is the cache's concern.
type KVBackend interface {
	// Get returns the stored value.
	// Returns domain.ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key owned by the backend.
	Clear(ctx context.Context) error

	// Keys lists the stored keys in no particular order.
	Keys(ctx context.Context) ([]string, error)
}
