package repository

import (
	"context"
	"testing"

	"go-resto-ops/internal/model"
	"go-resto-ops/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrder(p *model.Product, number string, qty int) *model.Order {
	item := model.OrderItem{ProductID: p.ID, Quantity: qty, UnitPrice: p.UnitPrice}
	item.TotalPrice = item.LineTotal()
	o := &model.Order{
		OrderNumber:  number,
		CustomerName: "Walk-in",
		Status:       model.OrderPending,
		Items:        []model.OrderItem{item},
	}
	o.TotalAmount = o.SumItems()
	return o
}

func TestOrderRepo_CreateAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewOrderRepo(db)
	p := testutil.CreateProduct(t, db, "RAMY-01", 10, 5)

	order := newOrder(p, "ORD-260301-001", 2)
	require.NoError(t, repo.Create(db, order))

	got, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "RAMY-01", got.Items[0].Product.SKU)
	assert.True(t, decimal.RequireFromString("25").Equal(got.TotalAmount))
}

func TestOrderRepo_CreateDuplicateNumberKeepsTxUsable(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewOrderRepo(db)
	p := testutil.CreateProduct(t, db, "RAMY-01", 10, 5)
	require.NoError(t, repo.Create(db, newOrder(p, "ORD-260301-001", 1)))

	err := db.Transaction(func(tx *gorm.DB) error {
		dup := newOrder(p, "ORD-260301-001", 2)
		require.ErrorIs(t, repo.Create(tx, dup), ErrDuplicateOrderNumber)

		dup.OrderNumber = "ORD-260301-002"
		return repo.Create(tx, dup)
	})
	require.NoError(t, err)

	var orders, items int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&model.OrderItem{}).Count(&items).Error)
	assert.EqualValues(t, 2, orders)
	assert.EqualValues(t, 2, items)
}

func TestOrderRepo_FindAllByStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewOrderRepo(db)
	p := testutil.CreateProduct(t, db, "RAMY-01", 10, 5)

	first := newOrder(p, "ORD-260301-001", 1)
	first.CreatedAt = testutil.At(0)
	second := newOrder(p, "ORD-260301-002", 1)
	second.CreatedAt = testutil.At(5)
	second.Status = model.OrderProcessing
	require.NoError(t, repo.Create(db, first))
	require.NoError(t, repo.Create(db, second))

	all, err := repo.FindAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ORD-260301-002", all[0].OrderNumber)

	pending, err := repo.FindAll(context.Background(), model.OrderPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ORD-260301-001", pending[0].OrderNumber)
}

func TestOrderRepo_UpdateStatusGuardsCurrentStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewOrderRepo(db)
	p := testutil.CreateProduct(t, db, "RAMY-01", 10, 5)
	order := newOrder(p, "ORD-260301-001", 1)
	require.NoError(t, repo.Create(db, order))

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.LockByID(tx, order.ID)
		require.NoError(t, err)
		require.Len(t, locked.Items, 1)
		return repo.UpdateStatus(tx, order.ID, model.OrderPending, model.OrderProcessing, "staff")
	})
	require.NoError(t, err)

	err = repo.UpdateStatus(db, order.ID, model.OrderPending, model.OrderCancelled, "staff")
	assert.ErrorIs(t, err, ErrStaleStatus)
}

func TestOrderRepo_Assign(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewOrderRepo(db)
	staff := testutil.CreateProfile(t, db, "staff@resto.test", model.RoleStaff)
	p := testutil.CreateProduct(t, db, "RAMY-01", 10, 5)
	order := newOrder(p, "ORD-260301-001", 1)
	require.NoError(t, repo.Create(db, order))

	require.NoError(t, repo.Assign(context.Background(), order.ID, staff.ID, "admin"))
	got, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, staff.ID, got.AssignedTo.ID)

	missing := newOrder(p, "ORD-260301-404", 1)
	assert.ErrorIs(t, repo.Assign(context.Background(), missing.ID, staff.ID, "admin"), gorm.ErrRecordNotFound)
}
