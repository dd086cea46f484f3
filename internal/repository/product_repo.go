package repository

import (
	"context"

	"go-resto-ops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	ActiveOnly bool
	Category   string
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindLowStock(ctx context.Context) ([]model.Product, error)
	UpdateDetails(ctx context.Context, product *model.Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy string) error

	// LockByID reads the product with a row lock held until tx ends.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	// UpdateStock moves current_stock from previous to next, failing with
	// ErrStaleStock if the row no longer holds previous.
	UpdateStock(tx *gorm.DB, id uuid.UUID, previous, next int, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx)
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	err := q.Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindLowStock returns active products at or below their minimum level, by name.
func (r *productRepo) FindLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND current_stock <= min_stock_level", true).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

// UpdateDetails saves catalog fields only. Stock is owned by the ledger.
func (r *productRepo) UpdateDetails(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":            product.Name,
			"description":     product.Description,
			"sku":             product.SKU,
			"category":        product.Category,
			"unit_price":      product.UnitPrice,
			"min_stock_level": product.MinStockLevel,
			"max_stock_level": product.MaxStockLevel,
			"updated_by":      product.UpdatedBy,
		}).Error
}

func (r *productRepo) SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, previous, next int, updatedBy string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND current_stock = ?", id, previous).
		Updates(map[string]interface{}{
			"current_stock": next,
			"updated_by":    updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStock
	}
	return nil
}
