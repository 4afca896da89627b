package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
)

type stubRfqItemService struct {
	sweeps atomic.Int64
}

func (s *stubRfqItemService) Get(ctx context.Context, id int64) (*entity.RfqItem, error) {
	return nil, nil
}

func (s *stubRfqItemService) ListByRequest(ctx context.Context, requestID int64) ([]*entity.RfqItem, error) {
	return nil, nil
}

func (s *stubRfqItemService) RecordReply(ctx context.Context, id int64, quotedPrice int64) (*entity.RfqItem, error) {
	return nil, nil
}

func (s *stubRfqItemService) MarkNoResponse(ctx context.Context, id int64) (*entity.RfqItem, error) {
	return nil, nil
}

func (s *stubRfqItemService) Deselect(ctx context.Context, id int64) (*entity.RfqItem, error) {
	return nil, nil
}

func (s *stubRfqItemService) SweepOverdue(ctx context.Context, now time.Time, limit int) (int, error) {
	s.sweeps.Add(1)
	return 0, nil
}

type stubLockStore struct {
	deletes atomic.Int64
}

func (s *stubLockStore) TryAcquire(ctx context.Context, key, holder string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (s *stubLockStore) Release(ctx context.Context, key, holder string) error {
	return nil
}

func (s *stubLockStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.deletes.Add(1)
	return 1, nil
}

func TestRfqDeadlineWorker_SweepsPeriodically(t *testing.T) {
	svc := &stubRfqItemService{}
	w := NewRfqDeadlineWorker(svc, 10*time.Millisecond, 50, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return svc.sweeps.Load() >= 2
	}, time.Second, 5*time.Millisecond, "expected the initial sweep plus at least one tick")
}

func TestRfqDeadlineWorker_DoubleStart(t *testing.T) {
	w := NewRfqDeadlineWorker(&stubRfqItemService{}, time.Hour, 50, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}

func TestLeaseJanitor_Cleans(t *testing.T) {
	store := &stubLockStore{}
	j := NewLeaseJanitor(store, 10*time.Millisecond, zap.NewNop())

	require.NoError(t, j.Start(context.Background()))
	defer j.Stop()

	assert.Eventually(t, func() bool {
		return store.deletes.Load() >= 1
	}, time.Second, 5*time.Millisecond)
}

type namedWorker struct {
	name    string
	stops   *[]string
	started bool
}

func (w *namedWorker) Start(ctx context.Context) error { w.started = true; return nil }
func (w *namedWorker) Stop()                           { *w.stops = append(*w.stops, w.name) }
func (w *namedWorker) Name() string                    { return w.name }

func TestManager_StopsInReverseOrder(t *testing.T) {
	var stops []string
	m := NewManager(zap.NewNop())
	a := &namedWorker{name: "a", stops: &stops}
	b := &namedWorker{name: "b", stops: &stops}
	m.Register(a)
	m.Register(b)

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, a.started)
	assert.True(t, b.started)
	assert.Equal(t, 2, m.Count())

	m.StopAll()
	assert.Equal(t, []string{"b", "a"}, stops)
}
