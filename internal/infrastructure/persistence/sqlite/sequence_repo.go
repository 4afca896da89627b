package sqlite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
)

// SequenceRepository implements port.SequenceAllocator on the shared
// database. Allocation is a single atomic increment-and-return
// statement, never a read-then-write, so concurrent callers from any
// process receive distinct, gapless values starting at 1 per scope.
type SequenceRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSequenceRepository creates a new sequence allocator
func NewSequenceRepository(db *DB, logger *zap.Logger) *SequenceRepository {
	return &SequenceRepository{db: db, logger: logger}
}

// Next atomically increments and returns the counter for scope. The
// first call for a new scope creates the row with value 1.
func (r *SequenceRepository) Next(ctx context.Context, scope string) (int64, error) {
	var value int64
	err := r.db.getExecutor(ctx).QueryRowContext(ctx, `
		INSERT INTO sequence_counters (scope_key, value) VALUES (?, 1)
		ON CONFLICT(scope_key) DO UPDATE SET value = value + 1
		RETURNING value
	`, scope).Scan(&value)
	if err != nil {
		r.logger.Error("Failed to allocate sequence", zap.String("scope", scope), zap.Error(err))
		return 0, fmt.Errorf("allocate sequence: %w", port.ErrStoreUnavailable)
	}
	return value, nil
}

var _ port.SequenceAllocator = (*SequenceRepository)(nil)
