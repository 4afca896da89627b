// Package lock serializes critical sections under a named key across
// all server processes sharing the lease store. Locking is explicit at
// the call site: operations whose validate-then-mutate sequence must
// not interleave wrap themselves in RunExclusive.
package lock

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
)

// ErrTimeout is returned when a lease cannot be acquired within the
// acquisition timeout. Transient contention; callers may retry.
var ErrTimeout = errors.New("lock acquisition timed out")

const (
	// DefaultAcquireTimeout bounds how long RunExclusive waits for a lease.
	DefaultAcquireTimeout = 5 * time.Second

	// DefaultTTL is how long a lease survives a crashed holder. It must
	// exceed the expected maximum critical-section duration by a wide
	// margin so a live holder is never preempted.
	DefaultTTL = 30 * time.Second

	defaultRetryInterval = 100 * time.Millisecond
)

// ProjectKey returns the lease key scoping all mutations of a project
func ProjectKey(projectID int64) string {
	return fmt.Sprintf("project:%d", projectID)
}

// QuotationKey returns the lease key scoping mutations of a single
// quotation. Strictly finer-grained than ProjectKey; preferred when the
// operation's consistency check is contained within one quotation.
func QuotationKey(quotationID int64) string {
	return fmt.Sprintf("quotation:%d", quotationID)
}

// Options control a single RunExclusive call
type Options struct {
	AcquireTimeout time.Duration
	TTL            time.Duration
}

// Service provides named mutual exclusion backed by a shared lease store
type Service struct {
	store         port.LockStore
	logger        *zap.Logger
	retryInterval time.Duration
	defaults      Options
}

// NewService creates a new lock service
func NewService(store port.LockStore, logger *zap.Logger) *Service {
	return NewServiceWithOptions(store, logger, Options{})
}

// NewServiceWithOptions creates a lock service whose RunExclusive calls
// use the given timeout and TTL instead of the package defaults.
func NewServiceWithOptions(store port.LockStore, logger *zap.Logger, defaults Options) *Service {
	if defaults.AcquireTimeout <= 0 {
		defaults.AcquireTimeout = DefaultAcquireTimeout
	}
	if defaults.TTL <= 0 {
		defaults.TTL = DefaultTTL
	}
	return &Service{
		store:         store,
		logger:        logger,
		retryInterval: defaultRetryInterval,
		defaults:      defaults,
	}
}

// RunExclusive acquires the lease for key, runs fn exactly once, and
// releases the lease whether fn succeeds or fails. fn's error
// propagates to the caller after release. When the lease cannot be
// acquired within the timeout, ErrTimeout is returned and fn never runs.
//
// Not reentrant: fn must not call RunExclusive with the same key. Such
// a call contends against its own lease and fails with ErrTimeout once
// the acquisition window closes.
func (s *Service) RunExclusive(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return s.RunExclusiveOpts(ctx, key, fn, Options{})
}

// RunExclusiveOpts is RunExclusive with explicit timeout and TTL.
func (s *Service) RunExclusiveOpts(ctx context.Context, key string, fn func(ctx context.Context) error, opts Options) error {
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = s.defaults.AcquireTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = s.defaults.TTL
	}

	holder := uuid.NewString()
	if err := s.acquire(ctx, key, holder, opts); err != nil {
		return err
	}

	s.logger.Debug("Lock acquired",
		zap.String("key", key),
		zap.String("holder", holder))

	defer func() {
		if err := s.store.Release(context.WithoutCancel(ctx), key, holder); err != nil {
			// The lease self-expires after the TTL; log and move on.
			s.logger.Warn("Failed to release lock, lease will expire by TTL",
				zap.String("key", key),
				zap.String("holder", holder),
				zap.Error(err))
		}
	}()

	return fn(ctx)
}

func (s *Service) acquire(ctx context.Context, key, holder string, opts Options) error {
	deadline := time.Now().Add(opts.AcquireTimeout)

	for {
		ok, err := s.store.TryAcquire(ctx, key, holder, opts.TTL)
		if err != nil {
			return fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return nil
		}

		wait := s.retryInterval + time.Duration(rand.Int63n(int64(s.retryInterval)))
		if time.Now().Add(wait).After(deadline) {
			s.logger.Info("Lock acquisition timed out",
				zap.String("key", key),
				zap.Duration("timeout", opts.AcquireTimeout))
			return fmt.Errorf("%w: %s", ErrTimeout, key)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
