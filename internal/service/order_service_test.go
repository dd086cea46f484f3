package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go-resto-ops/internal/events"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNumberFormat(t *testing.T) {
	at := time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "ORD-260307-007", orderNumber(at, 7))
	assert.Equal(t, "ORD-260307-999", orderNumber(at, 999))
}

func TestOrderCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ramen := testutil.CreateProduct(t, env.db, "RAMY-01", 10, 5)
	gyoza := testutil.CreateProduct(t, env.db, "GYOZA-01", 10, 5)
	require.NoError(t, env.db.Model(gyoza).Update("unit_price", decimal.RequireFromString("4.25")).Error)

	order, err := env.orders.Create(ctx, env.staff, CreateOrderRequest{
		CustomerName: "Aiko",
		OrderSource:  "walk-in",
		Items: []OrderItemRequest{
			{ProductID: ramen.ID, Quantity: 2},
			{ProductID: gyoza.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{6}-\d{3}$`), order.OrderNumber)
	assert.Equal(t, model.OrderPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.True(t, decimal.RequireFromString("37.75").Equal(order.TotalAmount), order.TotalAmount.String())
	assert.True(t, order.SumItems().Equal(order.TotalAmount))

	// creating an order never moves stock
	got, err := env.products.FindByID(ctx, ramen.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.CurrentStock)
	assert.Equal(t, []string{events.TopicOrderCreated}, env.events.Topics())
}

func TestOrderCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ramen := testutil.CreateProduct(t, env.db, "RAMY-01", 10, 5)
	off := testutil.CreateProduct(t, env.db, "OFF-01", 10, 5)
	testutil.Deactivate(t, env.db, off)

	var ve *ValidationError
	_, err := env.orders.Create(ctx, env.staff, CreateOrderRequest{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items", ve.Field)

	_, err = env.orders.Create(ctx, env.staff, CreateOrderRequest{Items: []OrderItemRequest{{ProductID: ramen.ID, Quantity: 0}}})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)

	_, err = env.orders.Create(ctx, env.staff, CreateOrderRequest{Items: []OrderItemRequest{{ProductID: off.ID, Quantity: 1}}})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].product_id", ve.Field)

	_, err = env.orders.Create(ctx, env.staff, CreateOrderRequest{Items: []OrderItemRequest{{ProductID: uuid.New(), Quantity: 1}}})
	require.ErrorAs(t, err, &ve)

	_, err = env.orders.Create(ctx, env.supplier, CreateOrderRequest{Items: []OrderItemRequest{{ProductID: ramen.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestOrderCreate_RetriesNumberCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ramen := testutil.CreateProduct(t, env.db, "RAMY-01", 10, 5)
	svc := env.orders.(*orderService)
	svc.now = func() time.Time { return time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC) }

	suffixes := []int{1, 1, 2}
	svc.suffix = func() int {
		s := suffixes[0]
		suffixes = suffixes[1:]
		return s
	}
	req := CreateOrderRequest{Items: []OrderItemRequest{{ProductID: ramen.ID, Quantity: 1}}}

	first, err := svc.Create(ctx, env.staff, req)
	require.NoError(t, err)
	second, err := svc.Create(ctx, env.staff, req)
	require.NoError(t, err)
	assert.Equal(t, "ORD-260307-001", first.OrderNumber)
	assert.Equal(t, "ORD-260307-002", second.OrderNumber)

	svc.suffix = func() int { return 1 }
	_, err = svc.Create(ctx, env.staff, req)
	var be *BackendError
	assert.ErrorAs(t, err, &be)

	var orders, items int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, env.db.Model(&model.OrderItem{}).Count(&items).Error)
	assert.EqualValues(t, 2, orders)
	assert.EqualValues(t, 2, items)
}

func TestOrderCreate_RetriesWhenNumberTakenByAnotherWriter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ramen := testutil.CreateProduct(t, env.db, "RAMY-01", 10, 5)
	svc := env.orders.(*orderService)
	svc.now = func() time.Time { return time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC) }

	// A concurrent writer already committed ORD-260307-042.
	taken := &model.Order{OrderNumber: "ORD-260307-042", Status: model.OrderPending}
	require.NoError(t, env.db.Create(taken).Error)

	suffixes := []int{42, 43}
	svc.suffix = func() int {
		s := suffixes[0]
		suffixes = suffixes[1:]
		return s
	}
	order, err := svc.Create(ctx, env.staff, CreateOrderRequest{Items: []OrderItemRequest{{ProductID: ramen.ID, Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, "ORD-260307-043", order.OrderNumber)
	require.Len(t, order.Items, 1)
	assert.Empty(t, suffixes)
}

func TestOrderUpdateStatus_Transitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ramen := testutil.CreateProduct(t, env.db, "RAMY-01", 10, 5)
	order, err := env.orders.Create(ctx, env.staff, CreateOrderRequest{Items: []OrderItemRequest{{ProductID: ramen.ID, Quantity: 2}}})
	require.NoError(t, err)

	processing, err := env.orders.UpdateStatus(ctx, env.staff, order.ID, model.OrderProcessing)
	require.NoError(t, err)
	assert.Equal(t, model.OrderProcessing, processing.Status)

	_, err = env.orders.UpdateStatus(ctx, env.staff, order.ID, model.OrderPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.orders.UpdateStatus(ctx, env.staff, order.ID, model.OrderFulfilled)
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, env.staff, order.ID, model.OrderCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.orders.UpdateStatus(ctx, env.staff, order.ID, "shipped")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = env.orders.UpdateStatus(ctx, env.supplier, order.ID, model.OrderCancelled)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.orders.UpdateStatus(ctx, env.staff, uuid.New(), model.OrderCancelled)
	assert.ErrorIs(t, err, ErrNotFound)

	// linkage is off by default
	got, err := env.products.FindByID(ctx, ramen.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.CurrentStock)
	assert.Zero(t, env.countEntries(t))
}

func TestOrderFulfill_WithSaleLinkage(t *testing.T) {
	env := newTestEnv(t, withSaleLinkage())
	ctx := context.Background()
	ramen := testutil.CreateProduct(t, env.db, "RAMY-01", 10, 5)
	order, err := env.orders.Create(ctx, env.staff, CreateOrderRequest{Items: []OrderItemRequest{{ProductID: ramen.ID, Quantity: 4}}})
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, env.staff, order.ID, model.OrderFulfilled)
	require.NoError(t, err)

	got, err := env.products.FindByID(ctx, ramen.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.CurrentStock)

	history, err := env.ledger.ProductHistory(ctx, ramen.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.TxSale, history[0].TransactionType)
	assert.Equal(t, order.ID, *history[0].ReferenceID)
	assert.Contains(t, env.events.Topics(), events.TopicInventorySale)
}

func TestOrderFulfill_InsufficientStockKeepsStatus(t *testing.T) {
	env := newTestEnv(t, withSaleLinkage())
	ctx := context.Background()
	ramen := testutil.CreateProduct(t, env.db, "RAMY-01", 1, 5)
	order, err := env.orders.Create(ctx, env.staff, CreateOrderRequest{Items: []OrderItemRequest{{ProductID: ramen.ID, Quantity: 4}}})
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, env.staff, order.ID, model.OrderFulfilled)
	var oor *OutOfRangeError
	require.ErrorAs(t, err, &oor)

	got, err := env.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, got.Status)
	assert.Zero(t, env.countEntries(t))
}

func TestOrderAssign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ramen := testutil.CreateProduct(t, env.db, "RAMY-01", 10, 5)
	order, err := env.orders.Create(ctx, env.staff, CreateOrderRequest{Items: []OrderItemRequest{{ProductID: ramen.ID, Quantity: 1}}})
	require.NoError(t, err)

	assigned, err := env.orders.Assign(ctx, env.admin, order.ID, env.staff.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, env.staff.ID, assigned.AssignedTo.ID)

	var ve *ValidationError
	_, err = env.orders.Assign(ctx, env.admin, order.ID, uuid.New())
	assert.ErrorAs(t, err, &ve)

	_, err = env.orders.Assign(ctx, env.admin, uuid.New(), env.staff.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ramen := testutil.CreateProduct(t, env.db, "RAMY-01", 10, 5)
	req := CreateOrderRequest{Items: []OrderItemRequest{{ProductID: ramen.ID, Quantity: 1}}}
	first, err := env.orders.Create(ctx, env.staff, req)
	require.NoError(t, err)
	_, err = env.orders.Create(ctx, env.staff, req)
	require.NoError(t, err)
	_, err = env.orders.UpdateStatus(ctx, env.staff, first.ID, model.OrderCancelled)
	require.NoError(t, err)

	all, err := env.orders.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled, err := env.orders.List(ctx, model.OrderCancelled)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)

	_, err = env.orders.List(ctx, "bogus")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
