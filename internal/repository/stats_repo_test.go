package repository

import (
	"context"
	"testing"

	"go-resto-ops/internal/model"
	"go-resto-ops/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepo_GetDashboardStats(t *testing.T) {
	db := testutil.NewDB(t)
	orders := NewOrderRepo(db)
	testutil.CreateProfile(t, db, "admin@resto.test", model.RoleAdmin)
	low := testutil.CreateProduct(t, db, "LOW", 2, 5)
	testutil.CreateProduct(t, db, "OK", 50, 5)

	pending := newOrder(low, "ORD-260301-001", 2)
	done := newOrder(low, "ORD-260301-002", 4)
	done.Status = model.OrderFulfilled
	done.TotalAmount = done.SumItems()
	require.NoError(t, orders.Create(db, pending))
	require.NoError(t, orders.Create(db, done))

	stats, err := NewStatsRepo(db).GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(2), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.LowStockItems)
	assert.Equal(t, int64(1), stats.TeamMembers)
	assert.True(t, decimal.RequireFromString("75").Equal(stats.Revenue), stats.Revenue.String())
}

func TestStatsRepo_EmptyRevenueIsZero(t *testing.T) {
	db := testutil.NewDB(t)
	stats, err := NewStatsRepo(db).GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.Revenue.IsZero())
}
