package storage

import (
	"context"

	"github.com/poiesic/groundit/core"
)

// ObjectStore is durable key/value blob storage for one bucket.
// Implementations must be thread-safe and support concurrent access.
type ObjectStore interface {
	// Put stores data under key, overwriting any existing object.
	// When Put returns nil the object is durably committed: a Get or List
	// issued afterwards observes it.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the object stored under key.
	// Returns ErrNotFound if no such object exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Stat describes the object stored under key without reading its data.
	// Returns ErrNotFound if no such object exists.
	Stat(ctx context.Context, key string) (*core.Document, error)

	// List enumerates keys with the given prefix in lexicographic order.
	// An empty prefix enumerates the whole bucket.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object stored under key.
	// Returns ErrNotFound if no such object exists.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
