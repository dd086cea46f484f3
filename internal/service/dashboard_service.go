package service

import (
	"context"
	"time"

	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"
)

const (
	dashboardListSize   = 5
	defaultMovementDays = 7
	MaxMovementDays     = 90
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, actor model.Actor) (*DashboardStats, error)
}

// DashboardStats is the overview card data plus the two short lists.
type DashboardStats struct {
	repository.DashboardStats
	RecentOrders     []model.Order   `json:"recent_orders"`
	LowStockProducts []model.Product `json:"low_stock_products"`
}

type dashboardService struct {
	statsRepo repository.StatsRepository
	txRepo    repository.StockTransactionRepository
	orderRepo repository.OrderRepository
	ledger    LedgerService
	now       func() time.Time
}

func NewDashboardService(statsRepo repository.StatsRepository, txRepo repository.StockTransactionRepository, orderRepo repository.OrderRepository, ledger LedgerService) DashboardService {
	return &dashboardService{
		statsRepo: statsRepo,
		txRepo:    txRepo,
		orderRepo: orderRepo,
		ledger:    ledger,
		now:       time.Now,
	}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = defaultMovementDays
	}
	if days > MaxMovementDays {
		days = MaxMovementDays
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	movement, err := s.txRepo.GetStockMovement(ctx, startDate, endDate)
	return movement, backend("stock movement", err)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, actor model.Actor) (*DashboardStats, error) {
	if !actor.Can(model.ActionDashboardView) {
		return nil, ErrForbidden
	}
	counters, err := s.statsRepo.GetDashboardStats(ctx)
	if err != nil {
		return nil, backend("dashboard stats", err)
	}
	// Team size is only disclosed to profiles that may view the team.
	if !actor.Can(model.ActionTeamView) {
		counters.TeamMembers = 1
	}

	recent, err := s.orderRepo.FindRecent(ctx, dashboardListSize)
	if err != nil {
		return nil, backend("recent orders", err)
	}
	low, err := s.ledger.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(low) > dashboardListSize {
		low = low[:dashboardListSize]
	}

	return &DashboardStats{
		DashboardStats:   *counters,
		RecentOrders:     recent,
		LowStockProducts: low,
	}, nil
}
