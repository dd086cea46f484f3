package repository

import (
	"context"
	"sort"
	"time"

	"go-resto-ops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockTransactionRepository interface {
	Append(tx *gorm.DB, entry *model.StockTransaction) error
	FindRecent(ctx context.Context, limit int) ([]model.StockTransaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockTransaction, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]model.StockTransaction, error)
	GetStockMovement(ctx context.Context, start, end time.Time) ([]StockMovementData, error)
}

// StockMovementData is one day of the dashboard movement chart
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type stockTransactionRepo struct {
	db *gorm.DB
}

func NewStockTransactionRepo(db *gorm.DB) StockTransactionRepository {
	return &stockTransactionRepo{db}
}

// Append inserts a ledger row. Ledger rows are never updated or deleted.
func (r *stockTransactionRepo) Append(tx *gorm.DB, entry *model.StockTransaction) error {
	return tx.Omit("Product", "Creator").Create(entry).Error
}

func (r *stockTransactionRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Creator")
}

func (r *stockTransactionRepo) FindRecent(ctx context.Context, limit int) ([]model.StockTransaction, error) {
	var entries []model.StockTransaction
	err := r.withRelations(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *stockTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	var entry model.StockTransaction
	if err := r.withRelations(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *stockTransactionRepo) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockTransaction, error) {
	var entries []model.StockTransaction
	err := r.withRelations(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *stockTransactionRepo) FindBetween(ctx context.Context, start, end time.Time) ([]model.StockTransaction, error) {
	var entries []model.StockTransaction
	err := r.withRelations(ctx).
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// GetStockMovement buckets ledger rows per UTC day. Aggregation happens in Go
// so the query stays portable across Postgres and SQLite.
func (r *stockTransactionRepo) GetStockMovement(ctx context.Context, start, end time.Time) ([]StockMovementData, error) {
	var rows []struct {
		CreatedAt      time.Time
		QuantityChange int
	}
	err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select("created_at, quantity_change").
		Where("created_at BETWEEN ? AND ?", start, end).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := map[string]*StockMovementData{}
	for _, row := range rows {
		day := row.CreatedAt.UTC().Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &StockMovementData{Date: day}
			byDay[day] = d
		}
		if row.QuantityChange > 0 {
			d.Inbound += row.QuantityChange
		} else {
			d.Outbound -= row.QuantityChange
		}
	}

	results := make([]StockMovementData, 0, len(byDay))
	for _, d := range byDay {
		results = append(results, *d)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}
