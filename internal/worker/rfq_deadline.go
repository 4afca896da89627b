package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/service"
)

// RfqDeadlineWorker periodically expires RFQ items whose vendors
// missed the reply deadline. The sweep re-checks each item's status in
// its own transaction, so a reply landing mid-sweep always wins.
type RfqDeadlineWorker struct {
	rfqItems service.RfqItemService
	logger   *zap.Logger

	interval  time.Duration
	batchSize int

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRfqDeadlineWorker creates a new RFQ deadline worker
func NewRfqDeadlineWorker(rfqItems service.RfqItemService, interval time.Duration, batchSize int, logger *zap.Logger) *RfqDeadlineWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &RfqDeadlineWorker{
		rfqItems:  rfqItems,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start starts the sweep loop
func (w *RfqDeadlineWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("rfq deadline worker is already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true

	w.logger.Info("RfqDeadlineWorker started",
		zap.Duration("interval", w.interval),
		zap.Int("batch_size", w.batchSize))

	go w.sweepLoop()
	return nil
}

// Stop stops the sweep loop
func (w *RfqDeadlineWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}
	w.isRunning = false
	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("RfqDeadlineWorker stopped")
}

// Name returns the worker name for identification
func (w *RfqDeadlineWorker) Name() string {
	return "RfqDeadlineWorker"
}

func (w *RfqDeadlineWorker) sweepLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *RfqDeadlineWorker) sweep() {
	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	swept, err := w.rfqItems.SweepOverdue(ctx, time.Now(), w.batchSize)
	if err != nil {
		w.logger.Error("RFQ deadline sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		w.logger.Info("RFQ deadline sweep completed", zap.Int("expired", swept))
	}
}
