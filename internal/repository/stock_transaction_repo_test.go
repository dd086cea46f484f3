package repository

import (
	"context"
	"testing"

	"go-resto-ops/internal/model"
	"go-resto-ops/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func appendEntry(t *testing.T, db *gorm.DB, p *model.Product, by *model.Profile, change, prev, minutes int) {
	t.Helper()
	entry := &model.StockTransaction{
		ProductID:       p.ID,
		TransactionType: model.TxAdjustment,
		QuantityChange:  change,
		PreviousStock:   prev,
		NewStock:        prev + change,
		Notes:           "count",
		CreatedByID:     &by.ID,
	}
	entry.CreatedAt = testutil.At(minutes)
	require.NoError(t, NewStockTransactionRepo(db).Append(db, entry))
}

func TestStockTransactionRepo_FindRecentNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStockTransactionRepo(db)
	staff := testutil.CreateProfile(t, db, "staff@resto.test", model.RoleStaff)
	p := testutil.CreateProduct(t, db, "RAMY-01", 10, 5)

	appendEntry(t, db, p, staff, 5, 10, 0)
	appendEntry(t, db, p, staff, -3, 15, 10)
	appendEntry(t, db, p, staff, 8, 12, 20)

	entries, err := repo.FindRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 8, entries[0].QuantityChange)
	assert.Equal(t, -3, entries[1].QuantityChange)

	require.NotNil(t, entries[0].Product)
	assert.Equal(t, "RAMY-01", entries[0].Product.SKU)
	require.NotNil(t, entries[0].Creator)
	assert.Equal(t, "staff@resto.test", entries[0].Creator.Email)
	assert.True(t, entries[0].Consistent())
}

func TestStockTransactionRepo_FindByProduct(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStockTransactionRepo(db)
	staff := testutil.CreateProfile(t, db, "staff@resto.test", model.RoleStaff)
	a := testutil.CreateProduct(t, db, "A", 10, 5)
	b := testutil.CreateProduct(t, db, "B", 10, 5)

	appendEntry(t, db, a, staff, 1, 10, 0)
	appendEntry(t, db, b, staff, 2, 10, 1)

	entries, err := repo.FindByProduct(context.Background(), b.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, b.ID, entries[0].ProductID)
}

func TestStockTransactionRepo_GetStockMovement(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStockTransactionRepo(db)
	staff := testutil.CreateProfile(t, db, "staff@resto.test", model.RoleStaff)
	p := testutil.CreateProduct(t, db, "RAMY-01", 10, 5)

	appendEntry(t, db, p, staff, 20, 10, 0)
	appendEntry(t, db, p, staff, -5, 30, 30)
	appendEntry(t, db, p, staff, 4, 25, 24*60)

	movement, err := repo.GetStockMovement(context.Background(), testutil.At(-60), testutil.At(2*24*60))
	require.NoError(t, err)
	require.Len(t, movement, 2)
	assert.Equal(t, StockMovementData{Date: "2026-03-01", Inbound: 20, Outbound: 5}, movement[0])
	assert.Equal(t, StockMovementData{Date: "2026-03-02", Inbound: 4, Outbound: 0}, movement[1])
}
