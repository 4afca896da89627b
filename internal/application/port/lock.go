package port

import (
	"context"
	"time"
)

// LockStore is the shared backing store for distributed lock leases.
// Both operations must be atomic under concurrent callers from multiple
// processes; the store's insert/compare-and-delete semantics enforce
// the single-valid-lease-per-key invariant, not application logic.
type LockStore interface {
	// TryAcquire attempts to create a lease for key held by holder.
	// Returns false when a valid (unexpired) lease for key already exists.
	TryAcquire(ctx context.Context, key, holder string, ttl time.Duration) (bool, error)

	// Release deletes the lease only if still held by holder.
	Release(ctx context.Context, key, holder string) error

	// DeleteExpired removes leases whose TTL elapsed. Housekeeping only:
	// acquisition correctness never depends on it.
	DeleteExpired(ctx context.Context) (int64, error)
}

// SequenceAllocator hands out unique, strictly increasing integers per
// scope, starting at 1. Implementations must use a single atomic
// read-modify-write against the backing store so that no two concurrent
// callers, in any process, receive the same value.
type SequenceAllocator interface {
	Next(ctx context.Context, scope string) (int64, error)
}
