package service

import (
	"context"
	"testing"
	"time"

	"go-resto-ops/internal/events"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// stalledPublisher blocks until its context ends.
type stalledPublisher struct{}

func (stalledPublisher) Publish(ctx context.Context, _, _ string, _ any) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPublish_BoundedByTimeout(t *testing.T) {
	old := publishTimeout
	publishTimeout = 50 * time.Millisecond
	t.Cleanup(func() { publishTimeout = old })

	core, logs := observer.New(zap.WarnLevel)
	start := time.Now()
	publish(context.Background(), stalledPublisher{}, zap.New(core), events.TopicInventoryAdjusted, "p-1", nil)

	assert.Less(t, time.Since(start), time.Second)
	require.Equal(t, 1, logs.FilterMessage("event publish failed").Len())
}

func TestRecordAdjustment_StalledSinkDoesNotHoldRequest(t *testing.T) {
	old := publishTimeout
	publishTimeout = 50 * time.Millisecond
	t.Cleanup(func() { publishTimeout = old })

	env := newTestEnv(t)
	ledger := NewLedgerService(env.db, env.products, env.ledgerTxs, events.Fanout{stalledPublisher{}}, zap.NewNop(), 0)
	product := testutil.CreateProduct(t, env.db, "RAMY-01", 10, 5)

	start := time.Now()
	entry, err := ledger.RecordAdjustment(context.Background(), env.staff, AdjustmentRequest{
		ProductID:       product.ID,
		TransactionType: model.TxRestock,
		QuantityChange:  1,
		Notes:           "top up",
	})
	require.NoError(t, err)
	assert.Equal(t, 11, entry.NewStock)
	assert.Less(t, time.Since(start), time.Second)
}
