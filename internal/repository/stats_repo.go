package repository

import (
	"context"

	"go-resto-ops/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatsRepository interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// DashboardStats holds the headline counters of the dashboard
type DashboardStats struct {
	TotalOrders    int64           `json:"total_orders"`
	PendingOrders  int64           `json:"pending_orders"`
	ActiveProducts int64           `json:"active_products"`
	LowStockItems  int64           `json:"low_stock_items"`
	TeamMembers    int64           `json:"team_members"`
	Revenue        decimal.Decimal `json:"revenue"`
}

type statsRepo struct {
	db *gorm.DB
}

func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db}
}

func (r *statsRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Order{}).Where("status = ?", model.OrderPending).Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("is_active = ?", true).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}

	// Same predicate as ProductRepository.FindLowStock
	if err := db.Model(&model.Product{}).
		Where("is_active = ? AND current_stock <= min_stock_level", true).
		Count(&stats.LowStockItems).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Profile{}).Count(&stats.TeamMembers).Error; err != nil {
		return nil, err
	}

	// Revenue sums every order amount, whatever its status
	var revenue decimal.NullDecimal
	if err := db.Model(&model.Order{}).Select("SUM(total_amount)").Row().Scan(&revenue); err != nil {
		return nil, err
	}
	stats.Revenue = decimal.Zero
	if revenue.Valid {
		stats.Revenue = revenue.Decimal
	}

	return &stats, nil
}
