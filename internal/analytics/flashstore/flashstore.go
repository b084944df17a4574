// Package flashstore provides session scoped key/value stores whose entries
// live just long enough to be picked up by the next request of a session.
package flashstore

import (
	"context"
	"time"
)

// DefaultTTL bounds how long a flashed value waits for the next request.
const DefaultTTL = 5 * time.Minute

// Store is a transient cross-request key/value store.
// Implementations must be safe for concurrent use; concurrent writers to the
// same key are last-write-wins.
type Store interface {
	// Has reports whether key currently holds a value.
	Has(ctx context.Context, key string) (bool, error)
	// Get returns the value stored under key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Flash stores value under key for one hand-off to a later request.
	Flash(ctx context.Context, key string, value []byte) error
	// Forget removes key.
	Forget(ctx context.Context, key string) error
	// Pull returns the value stored under key and removes it in one step.
	Pull(ctx context.Context, key string) (value []byte, ok bool, err error)
}
