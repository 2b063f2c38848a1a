package ports

import (
	"context"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

// StateStore is the shared-state map used for cross-block communication.
// Every operation is atomic with respect to every other operation on the store.
// Implementations return domain.ErrInvalidKey for empty keys.
type StateStore interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (domain.Value, bool, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key string, value domain.Value) error

	// Toggle flips a boolean. Missing or non-bool values count as false.
	Toggle(ctx context.Context, key string) (bool, error)

	// Increment adds delta to an integer counter. Missing values count as 0.
	Increment(ctx context.Context, key string, delta int64) (int64, error)

	// CompareAndSet stores next only if the current value equals old.
	// A zero old value matches a missing key.
	CompareAndSet(ctx context.Context, key string, old, next domain.Value) (bool, error)

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Snapshot returns a copy of every entry.
	Snapshot(ctx context.Context) (map[string]domain.Value, error)
}
