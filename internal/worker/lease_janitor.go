package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
)

// LeaseJanitor deletes expired lock leases. Pure housekeeping: lock
// acquisition treats expired rows as free regardless, this just keeps
// the table from accumulating rows after crashes.
type LeaseJanitor struct {
	store  port.LockStore
	logger *zap.Logger

	interval time.Duration

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewLeaseJanitor creates a new lease janitor
func NewLeaseJanitor(store port.LockStore, interval time.Duration, logger *zap.Logger) *LeaseJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &LeaseJanitor{
		store:    store,
		logger:   logger,
		interval: interval,
	}
}

// Start starts the cleanup loop
func (j *LeaseJanitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.isRunning {
		return fmt.Errorf("lease janitor is already running")
	}

	j.ctx, j.cancel = context.WithCancel(ctx)
	j.isRunning = true

	j.logger.Info("LeaseJanitor started", zap.Duration("interval", j.interval))

	go j.cleanupLoop()
	return nil
}

// Stop stops the cleanup loop
func (j *LeaseJanitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.isRunning {
		return
	}
	j.isRunning = false
	if j.cancel != nil {
		j.cancel()
	}

	j.logger.Info("LeaseJanitor stopped")
}

// Name returns the worker name for identification
func (j *LeaseJanitor) Name() string {
	return "LeaseJanitor"
}

func (j *LeaseJanitor) cleanupLoop() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *LeaseJanitor) cleanup() {
	ctx, cancel := context.WithTimeout(j.ctx, 10*time.Second)
	defer cancel()

	deleted, err := j.store.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("Lease cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.logger.Debug("Expired leases removed", zap.Int64("count", deleted))
	}
}
