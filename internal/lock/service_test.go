package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryStore is an in-process lease store honoring the same
// acquire-if-absent-or-expired contract as the sqlite-backed one.
type memoryStore struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

type lease struct {
	holder    string
	expiresAt time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{leases: make(map[string]lease), now: time.Now}
}

func (s *memoryStore) TryAcquire(_ context.Context, key, holder string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if l, ok := s.leases[key]; ok && l.expiresAt.After(now) {
		return false, nil
	}
	s.leases[key] = lease{holder: holder, expiresAt: now.Add(ttl)}
	return true, nil
}

func (s *memoryStore) Release(_ context.Context, key, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.leases[key]; ok && l.holder == holder {
		delete(s.leases, key)
	}
	return nil
}

func (s *memoryStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	now := s.now()
	for key, l := range s.leases {
		if !l.expiresAt.After(now) {
			delete(s.leases, key)
			n++
		}
	}
	return n, nil
}

func newTestService(store *memoryStore) *Service {
	svc := NewService(store, zap.NewNop())
	svc.retryInterval = 5 * time.Millisecond
	return svc
}

func TestRunExclusive_CriticalSectionsNeverOverlap(t *testing.T) {
	svc := newTestService(newMemoryStore())

	const workers = 8
	var inSection atomic.Int32
	var maxSeen atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.RunExclusive(context.Background(), "project:1", func(ctx context.Context) error {
				n := inSection.Add(1)
				if n > maxSeen.Load() {
					maxSeen.Store(n)
				}
				time.Sleep(2 * time.Millisecond)
				inSection.Add(-1)
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxSeen.Load(), "two critical sections ran concurrently")
}

func TestRunExclusive_SecondCallerTimesOut(t *testing.T) {
	svc := newTestService(newMemoryStore())

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = svc.RunExclusive(context.Background(), "project:2", func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	err := svc.RunExclusiveOpts(context.Background(), "project:2",
		func(ctx context.Context) error {
			t.Error("critical section ran while lock was held")
			return nil
		},
		Options{AcquireTimeout: 30 * time.Millisecond})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "expected ErrTimeout, got %v", err)
}

func TestRunExclusive_ReleasedOnError(t *testing.T) {
	svc := newTestService(newMemoryStore())
	wantErr := errors.New("business failure")

	err := svc.RunExclusive(context.Background(), "quotation:3", func(ctx context.Context) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	// Lease must be gone: the next caller gets in immediately.
	var ran bool
	err = svc.RunExclusiveOpts(context.Background(), "quotation:3",
		func(ctx context.Context) error {
			ran = true
			return nil
		},
		Options{AcquireTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRunExclusive_CrashedHolderExpiresByTTL(t *testing.T) {
	store := newMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	// Simulate a crashed holder: lease taken, never released.
	ok, err := store.TryAcquire(context.Background(), "project:4", "crashed", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	svc := newTestService(store)

	// Before the TTL elapses the key must stay unavailable.
	err = svc.RunExclusiveOpts(context.Background(), "project:4",
		func(ctx context.Context) error {
			t.Error("acquired lease before TTL expiry")
			return nil
		},
		Options{AcquireTimeout: 20 * time.Millisecond})
	require.ErrorIs(t, err, ErrTimeout)

	// After expiry the lease is acquirable again.
	now = now.Add(51 * time.Millisecond)
	var ran bool
	err = svc.RunExclusive(context.Background(), "project:4", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRunExclusive_ContextCancelStopsWaiting(t *testing.T) {
	store := newMemoryStore()
	ok, err := store.TryAcquire(context.Background(), "project:5", "other", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	svc := newTestService(store)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err = svc.RunExclusiveOpts(ctx, "project:5",
		func(ctx context.Context) error { return nil },
		Options{AcquireTimeout: time.Second})
	require.ErrorIs(t, err, context.Canceled)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "project:42", ProjectKey(42))
	assert.Equal(t, "quotation:7", QuotationKey(7))
}
