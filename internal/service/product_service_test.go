package service

import (
	"context"
	"testing"

	"go-resto-ops/internal/events"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramenRequest() ProductRequest {
	return ProductRequest{
		Name:          "Tonkotsu Ramen",
		SKU:           "RAMY-01",
		Category:      "mains",
		UnitPrice:     decimal.RequireFromString("12.50"),
		InitialStock:  10,
		MinStockLevel: 5,
		MaxStockLevel: 40,
	}
}

func TestProductCreate_BooksInitialStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.catalog.Create(ctx, env.staff, ramenRequest())
	require.NoError(t, err)
	assert.Equal(t, 10, p.CurrentStock)
	assert.True(t, p.IsActive)

	history, err := env.ledger.ProductHistory(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.TxRestock, history[0].TransactionType)
	assert.Equal(t, "initial stock", history[0].Notes)
	assert.Equal(t, 0, history[0].PreviousStock)
	assert.Equal(t, 10, history[0].NewStock)

	assert.Equal(t, []string{events.TopicProductCreated}, env.events.Topics())
}

func TestProductCreate_WithoutStockHasNoEntry(t *testing.T) {
	env := newTestEnv(t)
	req := ramenRequest()
	req.InitialStock = 0

	_, err := env.catalog.Create(context.Background(), env.admin, req)
	require.NoError(t, err)
	assert.Zero(t, env.countEntries(t))
}

func TestProductCreate_Rules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.Create(ctx, env.supplier, ramenRequest())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.catalog.Create(ctx, env.staff, ramenRequest())
	require.NoError(t, err)
	_, err = env.catalog.Create(ctx, env.staff, ramenRequest())
	assert.ErrorIs(t, err, ErrSKUExists)

	bad := ramenRequest()
	bad.SKU = "OTHER"
	bad.MaxStockLevel = 1
	_, err = env.catalog.Create(ctx, env.staff, bad)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "max_stock_level", ve.Field)

	negative := ramenRequest()
	negative.SKU = "NEG"
	negative.UnitPrice = decimal.NewFromInt(-1)
	_, err = env.catalog.Create(ctx, env.staff, negative)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "unit_price", ve.Field)
}

func TestProductUpdate_DoesNotTouchStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.catalog.Create(ctx, env.staff, ramenRequest())
	require.NoError(t, err)

	req := ramenRequest()
	req.Name = "Shoyu Ramen"
	req.InitialStock = 500
	req.UnitPrice = decimal.RequireFromString("13.00")
	updated, err := env.catalog.Update(ctx, env.staff, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Shoyu Ramen", updated.Name)
	assert.Equal(t, 10, updated.CurrentStock)
	assert.True(t, decimal.RequireFromString("13").Equal(updated.UnitPrice))
	assert.Equal(t, int64(1), env.countEntries(t))
}

func TestProductUpdate_SKUConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.catalog.Create(ctx, env.staff, ramenRequest())
	require.NoError(t, err)
	other := ramenRequest()
	other.SKU = "GYOZA-01"
	second, err := env.catalog.Create(ctx, env.staff, other)
	require.NoError(t, err)

	_, err = env.catalog.Update(ctx, env.staff, second.ID, ramenRequest())
	assert.ErrorIs(t, err, ErrSKUExists)

	// keeping its own SKU is fine
	_, err = env.catalog.Update(ctx, env.staff, second.ID, other)
	assert.NoError(t, err)
}

func TestProductSetActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.catalog.Create(ctx, env.staff, ramenRequest())
	require.NoError(t, err)

	off, err := env.catalog.SetActive(ctx, env.staff, p.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	active, err := env.catalog.List(ctx, repository.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	on, err := env.catalog.SetActive(ctx, env.staff, p.ID, true)
	require.NoError(t, err)
	assert.True(t, on.IsActive)

	_, err = env.catalog.SetActive(ctx, env.supplier, p.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)
}
