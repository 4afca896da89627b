package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

func TestRfqItemService_RecordReply(t *testing.T) {
	var storedPrice int64
	rfqItems := &mockRfqItemRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.RfqItem, error) {
			return &entity.RfqItem{ID: id, RequestID: 1, Status: status.RfqItemSent}, nil
		},
		recordReplyFunc: func(ctx context.Context, id int64, quotedPrice int64, repliedAt time.Time) error {
			storedPrice = quotedPrice
			return nil
		},
	}

	svc := NewRfqItemService(rfqItems, &mockTxManager{}, zap.NewNop())
	item, err := svc.RecordReply(context.Background(), 1, 98000)
	require.NoError(t, err)

	assert.Equal(t, status.RfqItemReplied, item.Status)
	assert.Equal(t, int64(98000), storedPrice)
	require.NotNil(t, item.QuotedPrice)
	assert.Equal(t, int64(98000), *item.QuotedPrice)
	assert.NotNil(t, item.RepliedAt)
}

func TestRfqItemService_RecordReply_Invalid(t *testing.T) {
	rfqItems := &mockRfqItemRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.RfqItem, error) {
			return &entity.RfqItem{ID: id, Status: status.RfqItemNoResponse}, nil
		},
	}
	svc := NewRfqItemService(rfqItems, &mockTxManager{}, zap.NewNop())

	_, err := svc.RecordReply(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrValidation, "non-positive price")

	_, err = svc.RecordReply(context.Background(), 1, 5000)
	var invalid *status.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid, "NO_RESPONSE cannot reply")
}

func TestRfqItemService_SweepOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	statuses := map[int64]status.RfqItem{
		1: status.RfqItemSent,
		2: status.RfqItemReplied, // replied between listing and sweep
		3: status.RfqItemSent,
	}
	rfqItems := &mockRfqItemRepo{
		listOverdueFunc: func(ctx context.Context, now time.Time, limit int) ([]*entity.RfqItem, error) {
			return []*entity.RfqItem{
				{ID: 1, Status: status.RfqItemSent, Deadline: &past},
				{ID: 2, Status: status.RfqItemSent, Deadline: &past},
				{ID: 3, Status: status.RfqItemSent, Deadline: &past},
			}, nil
		},
		getByIDFunc: func(ctx context.Context, id int64) (*entity.RfqItem, error) {
			return &entity.RfqItem{ID: id, Status: statuses[id]}, nil
		},
		updateStatusFunc: func(ctx context.Context, id int64, from, to status.RfqItem) error {
			statuses[id] = to
			return nil
		},
	}

	svc := NewRfqItemService(rfqItems, &mockTxManager{}, zap.NewNop())
	swept, err := svc.SweepOverdue(context.Background(), now, 100)
	require.NoError(t, err)

	assert.Equal(t, 2, swept)
	assert.Equal(t, status.RfqItemNoResponse, statuses[1])
	assert.Equal(t, status.RfqItemReplied, statuses[2], "late reply wins over the sweep")
	assert.Equal(t, status.RfqItemNoResponse, statuses[3])
}

func TestRfqItemService_Deselect(t *testing.T) {
	var appliedFrom, appliedTo status.RfqItem
	rfqItems := &mockRfqItemRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.RfqItem, error) {
			return &entity.RfqItem{ID: id, RequestID: 1, Status: status.RfqItemSelected}, nil
		},
		updateStatusFunc: func(ctx context.Context, id int64, from, to status.RfqItem) error {
			appliedFrom = from
			appliedTo = to
			return nil
		},
	}

	svc := NewRfqItemService(rfqItems, &mockTxManager{}, zap.NewNop())
	item, err := svc.Deselect(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, status.RfqItemReplied, item.Status)
	assert.Equal(t, status.RfqItemSelected, appliedFrom)
	assert.Equal(t, status.RfqItemReplied, appliedTo)

	rfqItems.getByIDFunc = func(ctx context.Context, id int64) (*entity.RfqItem, error) {
		return &entity.RfqItem{ID: id, Status: status.RfqItemRejected}, nil
	}
	_, err = svc.Deselect(context.Background(), 4)
	var invalid *status.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid, "only a SELECTED item can fall back to REPLIED")
}
