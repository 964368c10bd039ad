package ports

import (
	"context"
	"errors"
)

// ErrNoState is returned by StateStore.Load when no document has been
// persisted yet. This is the first-run case, not a failure.
var ErrNoState = errors.New("no persisted state")

// StateStore is the durable-storage boundary for the task collection.
// The entire collection is persisted as a single opaque JSON document
// under one fixed key; writes are last-write-wins with no partial update.
type StateStore interface {
	// Load returns the persisted document, or ErrNoState when absent.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the persisted document.
	Save(ctx context.Context, doc []byte) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
