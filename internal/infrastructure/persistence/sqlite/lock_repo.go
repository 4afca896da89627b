package sqlite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
)

// LockRepository implements port.LockStore on the shared database. One
// row per key; the upsert's WHERE clause makes acquisition an atomic
// insert-or-steal-if-expired, so at most one valid lease exists per key
// across all processes sharing the database.
type LockRepository struct {
	db     *DB
	logger *zap.Logger
	now    func() time.Time
}

// NewLockRepository creates a new lock lease store
func NewLockRepository(db *DB, logger *zap.Logger) *LockRepository {
	return &LockRepository{db: db, logger: logger, now: time.Now}
}

// TryAcquire attempts to create a lease for key held by holder. An
// existing lease is replaced only when its expiry has passed; otherwise
// the statement affects zero rows and acquisition fails without error.
// Expiry timestamps are stored as unix milliseconds.
func (r *LockRepository) TryAcquire(ctx context.Context, key, holder string, ttl time.Duration) (bool, error) {
	now := r.now()
	expiresAt := now.Add(ttl).UnixMilli()

	// Deliberately run against the pool, never a caller's transaction:
	// a lease must be visible to other processes the moment it is taken.
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO lock_leases (lock_key, holder, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(lock_key) DO UPDATE SET holder = excluded.holder, expires_at = excluded.expires_at
		WHERE lock_leases.expires_at <= ?
	`, key, holder, expiresAt, now.UnixMilli())
	if err != nil {
		r.logger.Error("Failed to acquire lock", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("acquire lock: %w", port.ErrStoreUnavailable)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquire lock rows affected: %w", port.ErrStoreUnavailable)
	}
	return n > 0, nil
}

// Release deletes the lease only if still held by holder
// (compare-and-delete). Releasing a lease that expired and was taken
// over by someone else is a harmless no-op.
func (r *LockRepository) Release(ctx context.Context, key, holder string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM lock_leases WHERE lock_key = ? AND holder = ?`, key, holder)
	if err != nil {
		r.logger.Error("Failed to release lock", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("release lock: %w", port.ErrStoreUnavailable)
	}
	return nil
}

// DeleteExpired removes leases whose TTL elapsed. Housekeeping for the
// janitor worker; TryAcquire's expiry check is what correctness rests on.
func (r *LockRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM lock_leases WHERE expires_at <= ?`, r.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired leases: %w", port.ErrStoreUnavailable)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired leases rows affected: %w", port.ErrStoreUnavailable)
	}
	return n, nil
}

var _ port.LockStore = (*LockRepository)(nil)
