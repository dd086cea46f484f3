package repository

import (
	"context"
	"time"

	"go-resto-ops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	FindAll(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindRecent(ctx context.Context, limit int) ([]model.Order, error)
	FindBetween(ctx context.Context, start, end time.Time, status model.OrderStatus) ([]model.Order, error)
	Assign(ctx context.Context, id uuid.UUID, profileID uuid.UUID, updatedBy string) error

	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	// UpdateStatus moves the order from one status to another, failing with
	// ErrStaleStatus when the row is no longer in from.
	UpdateStatus(tx *gorm.DB, id uuid.UUID, from, to model.OrderStatus, updatedBy string) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

// Create inserts the order together with its items. Items must carry a nil
// Product so the catalog row is not upserted. The insert runs in a nested
// transaction (a savepoint inside tx), so a taken order number returns
// ErrDuplicateOrderNumber and leaves tx usable.
func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	err := tx.Transaction(func(inner *gorm.DB) error {
		return inner.Omit("AssignedTo").Create(order).Error
	})
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateOrderNumber
	}
	return err
}

func (r *orderRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("AssignedTo")
}

func (r *orderRepo) FindAll(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	q := r.withRelations(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.withRelations(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindRecent(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindBetween(ctx context.Context, start, end time.Time, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	q := r.withRelations(ctx).Where("created_at BETWEEN ? AND ?", start, end)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Assign(ctx context.Context, id uuid.UUID, profileID uuid.UUID, updatedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"assigned_to_id": profileID,
			"updated_by":     updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", id).Order("created_at ASC").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, from, to model.OrderStatus, updatedBy string) error {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
