package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go-resto-ops/internal/events"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultRecentLimit = 50

// AdjustmentRequest is a manual stock correction.
type AdjustmentRequest struct {
	ProductID       uuid.UUID             `json:"product_id" validate:"uuid_required"`
	TransactionType model.TransactionType `json:"transaction_type" validate:"required"`
	QuantityChange  int                   `json:"quantity_change" validate:"required"`
	Notes           string                `json:"notes" validate:"notblank"`
}

// LedgerService owns every change to a product's current stock.
type LedgerService interface {
	RecordAdjustment(ctx context.Context, actor model.Actor, req AdjustmentRequest) (*model.StockTransaction, error)
	// RecordSale decrements stock for each item inside the caller's transaction.
	// Any item going negative fails the whole sale.
	RecordSale(tx *gorm.DB, actor model.Actor, orderID uuid.UUID, items []model.OrderItem) ([]model.StockTransaction, error)
	// RecordInitialStock books the opening stock of a freshly created product.
	RecordInitialStock(tx *gorm.DB, actor model.Actor, productID uuid.UUID, quantity int) (*model.StockTransaction, error)

	ListLowStock(ctx context.Context) ([]model.Product, error)
	ListRecentTransactions(ctx context.Context, limit int) ([]model.StockTransaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
	ProductHistory(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockTransaction, error)
}

type ledgerService struct {
	db              *gorm.DB
	productRepo     repository.ProductRepository
	transactionRepo repository.StockTransactionRepository
	publisher       events.Publisher
	log             *zap.Logger
	recentLimit     int
}

func NewLedgerService(db *gorm.DB, pRepo repository.ProductRepository, tRepo repository.StockTransactionRepository, pub events.Publisher, log *zap.Logger, recentLimit int) LedgerService {
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	return &ledgerService{
		db:              db,
		productRepo:     pRepo,
		transactionRepo: tRepo,
		publisher:       pub,
		log:             log.Named("ledger"),
		recentLimit:     recentLimit,
	}
}

func (s *ledgerService) RecordAdjustment(ctx context.Context, actor model.Actor, req AdjustmentRequest) (*model.StockTransaction, error) {
	if !actor.Can(model.ActionInventoryAdjust) {
		return nil, ErrForbidden
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	if !req.TransactionType.IsManual() {
		return nil, invalid("transaction_type", "must be one of adjustment, restock, damage, return")
	}
	req.Notes = strings.TrimSpace(req.Notes)

	var (
		entry   *model.StockTransaction
		product *model.Product
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, product, err = s.apply(tx, actor, req.ProductID, req.TransactionType, req.QuantityChange, req.Notes, nil, true)
		return err
	})
	if err != nil {
		var oor *OutOfRangeError
		if errors.As(err, &oor) {
			s.log.Info("adjustment rejected",
				zap.String("product_id", req.ProductID.String()),
				zap.Int("current_stock", oor.CurrentStock),
				zap.Int("quantity_change", oor.Change))
		}
		return nil, backend("record adjustment", err)
	}

	s.log.Info("stock adjusted",
		zap.String("sku", product.SKU),
		zap.String("type", string(entry.TransactionType)),
		zap.Int("previous_stock", entry.PreviousStock),
		zap.Int("new_stock", entry.NewStock),
		zap.String("actor", actor.ID.String()))

	s.publish(ctx, events.TopicInventoryAdjusted, product.ID.String(), map[string]interface{}{
		"action":      "transaction_created",
		"transaction": entry,
		"product":     productPayload(product),
		"user":        actorPayload(actor),
		"message": fmt.Sprintf("%s recorded %s of %+d for '%s' (stock %d)",
			actor.Name, entry.TransactionType, entry.QuantityChange, product.Name, entry.NewStock),
	})
	return entry, nil
}

func (s *ledgerService) RecordSale(tx *gorm.DB, actor model.Actor, orderID uuid.UUID, items []model.OrderItem) ([]model.StockTransaction, error) {
	if len(items) == 0 {
		return nil, nil
	}
	// Lock rows in a stable order so concurrent sales cannot deadlock.
	sorted := make([]model.OrderItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})

	ref := orderID
	entries := make([]model.StockTransaction, 0, len(sorted))
	for _, item := range sorted {
		if item.Quantity <= 0 {
			return nil, invalid("quantity", "must be greater than 0")
		}
		entry, _, err := s.apply(tx, actor, item.ProductID, model.TxSale, -item.Quantity, "order sale", &ref, false)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (s *ledgerService) RecordInitialStock(tx *gorm.DB, actor model.Actor, productID uuid.UUID, quantity int) (*model.StockTransaction, error) {
	if quantity <= 0 {
		return nil, nil
	}
	entry, _, err := s.apply(tx, actor, productID, model.TxRestock, quantity, "initial stock", nil, true)
	return entry, err
}

// apply is the single read-modify-write on a product's stock. It must run
// inside tx: the row is locked, the update is guarded by the value read and
// the ledger row is appended in the same transaction.
func (s *ledgerService) apply(tx *gorm.DB, actor model.Actor, productID uuid.UUID, txType model.TransactionType, change int, notes string, ref *uuid.UUID, requireActive bool) (*model.StockTransaction, *model.Product, error) {
	if change == 0 {
		return nil, nil, invalid("quantity_change", "must not be zero")
	}
	product, err := s.productRepo.LockByID(tx, productID)
	if err != nil {
		return nil, nil, err
	}
	if requireActive && !product.IsActive {
		return nil, nil, invalid("product_id", "product is inactive")
	}

	previous := product.CurrentStock
	next := previous + change
	if next < 0 {
		return nil, nil, &OutOfRangeError{ProductID: product.ID, CurrentStock: previous, Change: change}
	}

	if err := s.productRepo.UpdateStock(tx, product.ID, previous, next, actor.ID.String()); err != nil {
		if errors.Is(err, repository.ErrStaleStock) {
			return nil, nil, ErrStockConflict
		}
		return nil, nil, err
	}

	actorID := actor.ID
	entry := &model.StockTransaction{
		ProductID:       product.ID,
		TransactionType: txType,
		QuantityChange:  change,
		PreviousStock:   previous,
		NewStock:        next,
		ReferenceID:     ref,
		Notes:           notes,
		CreatedByID:     &actorID,
	}
	entry.CreatedBy = actor.ID.String()
	entry.UpdatedBy = actor.ID.String()
	if err := s.transactionRepo.Append(tx, entry); err != nil {
		return nil, nil, err
	}

	product.CurrentStock = next
	return entry, product, nil
}

func (s *ledgerService) ListLowStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	return products, backend("list low stock", err)
}

func (s *ledgerService) ListRecentTransactions(ctx context.Context, limit int) ([]model.StockTransaction, error) {
	if limit <= 0 {
		limit = s.recentLimit
	}
	entries, err := s.transactionRepo.FindRecent(ctx, limit)
	return entries, backend("list transactions", err)
}

func (s *ledgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	entry, err := s.transactionRepo.FindByID(ctx, id)
	return entry, backend("get transaction", err)
}

func (s *ledgerService) ProductHistory(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockTransaction, error) {
	if limit <= 0 {
		limit = s.recentLimit
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, backend("get product", err)
	}
	entries, err := s.transactionRepo.FindByProduct(ctx, productID, limit)
	return entries, backend("product history", err)
}

func (s *ledgerService) publish(ctx context.Context, topic, key string, payload interface{}) {
	publish(ctx, s.publisher, s.log, topic, key, payload)
}
