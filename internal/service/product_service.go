package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-resto-ops/internal/events"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductRequest struct {
	Name          string          `json:"name" validate:"notblank,max=255"`
	Description   string          `json:"description"`
	SKU           string          `json:"sku" validate:"notblank,max=50"`
	Category      string          `json:"category" validate:"max=100"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	InitialStock  int             `json:"initial_stock" validate:"gte=0"`
	MinStockLevel int             `json:"min_stock_level" validate:"gte=0"`
	MaxStockLevel int             `json:"max_stock_level" validate:"gte=0,gtefield=MinStockLevel"`
}

type ProductService interface {
	Create(ctx context.Context, actor model.Actor, req ProductRequest) (*model.Product, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req ProductRequest) (*model.Product, error)
	SetActive(ctx context.Context, actor model.Actor, id uuid.UUID, active bool) (*model.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

type productService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	ledger      LedgerService
	publisher   events.Publisher
	log         *zap.Logger
}

func NewProductService(db *gorm.DB, pRepo repository.ProductRepository, ledger LedgerService, pub events.Publisher, log *zap.Logger) ProductService {
	return &productService{
		db:          db,
		productRepo: pRepo,
		ledger:      ledger,
		publisher:   pub,
		log:         log.Named("product"),
	}
}

func (s *productService) checkRequest(req *ProductRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.TrimSpace(req.SKU)
	req.Category = strings.TrimSpace(req.Category)
	if err := validate(req); err != nil {
		return err
	}
	if req.UnitPrice.IsNegative() {
		return invalid("unit_price", "must not be negative")
	}
	return nil
}

func (s *productService) skuTaken(ctx context.Context, sku string, self uuid.UUID) (bool, error) {
	existing, err := s.productRepo.FindBySKU(ctx, sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != self, nil
}

func (s *productService) Create(ctx context.Context, actor model.Actor, req ProductRequest) (*model.Product, error) {
	if !actor.Can(model.ActionProductCreate) {
		return nil, ErrForbidden
	}
	if err := s.checkRequest(&req); err != nil {
		return nil, err
	}
	taken, err := s.skuTaken(ctx, req.SKU, uuid.Nil)
	if err != nil {
		return nil, backend("check sku", err)
	}
	if taken {
		return nil, ErrSKUExists
	}

	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		Category:      req.Category,
		UnitPrice:     req.UnitPrice,
		MinStockLevel: req.MinStockLevel,
		MaxStockLevel: req.MaxStockLevel,
		IsActive:      true,
	}
	product.CreatedBy = actor.ID.String()
	product.UpdatedBy = actor.ID.String()

	// Opening stock goes through the ledger so the history starts at zero.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}
		if _, err := s.ledger.RecordInitialStock(tx, actor, product.ID, req.InitialStock); err != nil {
			return err
		}
		product.CurrentStock = req.InitialStock
		return nil
	})
	if err != nil {
		return nil, backend("create product", err)
	}

	s.log.Info("product created", zap.String("sku", product.SKU), zap.String("actor", actor.ID.String()))
	publish(ctx, s.publisher, s.log, events.TopicProductCreated, product.ID.String(), map[string]interface{}{
		"action":  "product_created",
		"product": productPayload(product),
		"user":    actorPayload(actor),
		"message": fmt.Sprintf("%s created product '%s'", actor.Name, product.Name),
	})
	return product, nil
}

// Update edits catalog fields. InitialStock is ignored: stock only moves
// through the ledger once the product exists.
func (s *productService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req ProductRequest) (*model.Product, error) {
	if !actor.Can(model.ActionProductUpdate) {
		return nil, ErrForbidden
	}
	req.InitialStock = 0
	if err := s.checkRequest(&req); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, backend("get product", err)
	}
	taken, err := s.skuTaken(ctx, req.SKU, existing.ID)
	if err != nil {
		return nil, backend("check sku", err)
	}
	if taken {
		return nil, ErrSKUExists
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.SKU = req.SKU
	existing.Category = req.Category
	existing.UnitPrice = req.UnitPrice
	existing.MinStockLevel = req.MinStockLevel
	existing.MaxStockLevel = req.MaxStockLevel
	existing.UpdatedBy = actor.ID.String()

	if err := s.productRepo.UpdateDetails(ctx, existing); err != nil {
		return nil, backend("update product", err)
	}
	updated, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, backend("get product", err)
	}

	publish(ctx, s.publisher, s.log, events.TopicProductUpdated, updated.ID.String(), map[string]interface{}{
		"action":  "product_updated",
		"product": productPayload(updated),
		"user":    actorPayload(actor),
		"message": fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name),
	})
	return updated, nil
}

func (s *productService) SetActive(ctx context.Context, actor model.Actor, id uuid.UUID, active bool) (*model.Product, error) {
	if !actor.Can(model.ActionProductUpdate) {
		return nil, ErrForbidden
	}
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, backend("get product", err)
	}
	if err := s.productRepo.SetActive(ctx, id, active, actor.ID.String()); err != nil {
		return nil, backend("set product active", err)
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, backend("get product", err)
	}

	action := "product_deactivated"
	if active {
		action = "product_activated"
	}
	publish(ctx, s.publisher, s.log, events.TopicProductUpdated, product.ID.String(), map[string]interface{}{
		"action":  action,
		"product": productPayload(product),
		"user":    actorPayload(actor),
	})
	return product, nil
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	return products, backend("list products", err)
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	return product, backend("get product", err)
}
