// Package testutil opens throwaway databases and seeds fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"go-resto-ops/internal/model"
	"go-resto-ops/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{Driver: "sqlite", DSN: ":memory:", Quiet: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateProfile stores an active profile with password "secret123".
func CreateProfile(t testing.TB, db *gorm.DB, email string, role model.Role) *model.Profile {
	t.Helper()
	p := &model.Profile{
		Email:     email,
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, p.SetPassword("secret123"))
	require.NoError(t, db.Create(p).Error)
	return p
}

// Actor returns the actor a profile acts as.
func Actor(p *model.Profile) model.Actor {
	return model.Actor{ID: p.ID, Role: p.Role, Name: p.FullName()}
}

// CreateProduct stores an active product with the given stock and minimum.
// The maximum level is set to four times the minimum (at least 100).
func CreateProduct(t testing.TB, db *gorm.DB, sku string, stock, minLevel int) *model.Product {
	t.Helper()
	maxLevel := minLevel * 4
	if maxLevel < 100 {
		maxLevel = 100
	}
	p := &model.Product{
		Name:          "Product " + sku,
		SKU:           sku,
		Category:      "mains",
		UnitPrice:     decimal.RequireFromString("12.50"),
		CurrentStock:  stock,
		MinStockLevel: minLevel,
		MaxStockLevel: maxLevel,
		IsActive:      true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Deactivate flips is_active off. GORM skips false on create because the
// column has a default, so it needs its own update.
func Deactivate(t testing.TB, db *gorm.DB, value interface{}) {
	t.Helper()
	require.NoError(t, db.Model(value).Update("is_active", false).Error)
}

// At returns a fixed UTC timestamp offset by the given minutes.
func At(minutes int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}
