package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go-resto-ops/internal/events"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const orderNumberAttempts = 5

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"min=1"`
}

type CreateOrderRequest struct {
	CustomerName  string             `json:"customer_name" validate:"max=255"`
	CustomerEmail string             `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string             `json:"customer_phone" validate:"max=50"`
	OrderSource   string             `json:"order_source" validate:"max=50"`
	Notes         string             `json:"notes"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderService interface {
	Create(ctx context.Context, actor model.Actor, req CreateOrderRequest) (*model.Order, error)
	UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
	Assign(ctx context.Context, actor model.Actor, id uuid.UUID, profileID uuid.UUID) (*model.Order, error)
	List(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	profileRepo repository.ProfileRepository
	ledger      LedgerService
	publisher   events.Publisher
	log         *zap.Logger

	// decrementOnFulfill books a sale in the ledger when an order is fulfilled.
	decrementOnFulfill bool
	now                func() time.Time
	suffix             func() int
}

func NewOrderService(db *gorm.DB, oRepo repository.OrderRepository, pRepo repository.ProductRepository, profRepo repository.ProfileRepository, ledger LedgerService, pub events.Publisher, log *zap.Logger, decrementOnFulfill bool) OrderService {
	return &orderService{
		db:                 db,
		orderRepo:          oRepo,
		productRepo:        pRepo,
		profileRepo:        profRepo,
		ledger:             ledger,
		publisher:          pub,
		log:                log.Named("order"),
		decrementOnFulfill: decrementOnFulfill,
		now:                time.Now,
		suffix:             func() int { return rand.IntN(1000) },
	}
}

// orderNumber formats ORD-YYMMDD-NNN.
func orderNumber(at time.Time, suffix int) string {
	return fmt.Sprintf("ORD-%s-%03d", at.Format("060102"), suffix%1000)
}

func (s *orderService) Create(ctx context.Context, actor model.Actor, req CreateOrderRequest) (*model.Order, error) {
	if !actor.Can(model.ActionOrderCreate) {
		return nil, ErrForbidden
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if len(req.Items) == 0 {
		return nil, invalid("items", "at least one item is required")
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	createdBy := actor.ID
	order := &model.Order{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		OrderSource:   req.OrderSource,
		Notes:         req.Notes,
		Status:        model.OrderPending,
		CreatedByID:   &createdBy,
	}
	order.CreatedBy = actor.ID.String()
	order.UpdatedBy = actor.ID.String()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, item := range req.Items {
			var product model.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalid(fmt.Sprintf("items[%d].product_id", i), "product does not exist")
				}
				return err
			}
			if !product.IsActive {
				return invalid(fmt.Sprintf("items[%d].product_id", i), "product is inactive")
			}
			line := model.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.UnitPrice,
			}
			line.TotalPrice = line.LineTotal()
			order.Items = append(order.Items, line)
		}
		order.TotalAmount = order.SumItems()

		return s.insert(tx, order)
	})
	if err != nil {
		return nil, backend("create order", err)
	}

	s.log.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("items", len(order.Items)))

	created, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, backend("get order", err)
	}
	publish(ctx, s.publisher, s.log, events.TopicOrderCreated, created.ID.String(), map[string]interface{}{
		"action":  "order_created",
		"order":   created,
		"user":    actorPayload(actor),
		"message": fmt.Sprintf("%s created order %s", actor.Name, created.OrderNumber),
	})
	return created, nil
}

// insert numbers the order and stores it, drawing a fresh number whenever the
// insert collides with an existing one.
func (s *orderService) insert(tx *gorm.DB, order *model.Order) error {
	for i := 0; i < orderNumberAttempts; i++ {
		order.OrderNumber = orderNumber(s.now(), s.suffix())
		err := s.orderRepo.Create(tx, order)
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			return err
		}
		s.log.Debug("order number taken, retrying", zap.String("order_number", order.OrderNumber))
	}
	return &BackendError{Op: "generate order number", Err: errors.New("no free order number after retries")}
}

func (s *orderService) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !actor.Can(model.ActionOrderUpdateStatus) {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, invalid("status", "must be one of pending, processing, fulfilled, cancelled")
	}

	var (
		previous model.OrderStatus
		sales    []model.StockTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.LockByID(tx, id)
		if err != nil {
			return err
		}
		previous = order.Status
		if !order.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, status)
		}
		if err := s.orderRepo.UpdateStatus(tx, order.ID, order.Status, status, actor.ID.String()); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
			}
			return err
		}
		if status == model.OrderFulfilled && s.decrementOnFulfill {
			sales, err = s.ledger.RecordSale(tx, actor, order.ID, order.Items)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, backend("update order status", err)
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, backend("get order", err)
	}

	s.log.Info("order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
		zap.Int("sales", len(sales)))

	publish(ctx, s.publisher, s.log, events.TopicOrderStatusChanged, order.ID.String(), map[string]interface{}{
		"action":          "order_status_changed",
		"order_id":        order.ID,
		"order_number":    order.OrderNumber,
		"previous_status": previous,
		"status":          order.Status,
		"user":            actorPayload(actor),
		"message":         fmt.Sprintf("%s moved order %s to %s", actor.Name, order.OrderNumber, order.Status),
	})
	for i := range sales {
		publish(ctx, s.publisher, s.log, events.TopicInventorySale, sales[i].ProductID.String(), map[string]interface{}{
			"action":       "sale_recorded",
			"transaction":  sales[i],
			"order_number": order.OrderNumber,
			"user":         actorPayload(actor),
		})
	}
	return order, nil
}

func (s *orderService) Assign(ctx context.Context, actor model.Actor, id uuid.UUID, profileID uuid.UUID) (*model.Order, error) {
	if !actor.Can(model.ActionOrderUpdateStatus) {
		return nil, ErrForbidden
	}
	assignee, err := s.profileRepo.FindByID(ctx, profileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("assigned_to", "profile does not exist")
	}
	if err != nil {
		return nil, backend("get profile", err)
	}
	if !assignee.IsActive {
		return nil, invalid("assigned_to", "profile is inactive")
	}

	if err := s.orderRepo.Assign(ctx, id, assignee.ID, actor.ID.String()); err != nil {
		return nil, backend("assign order", err)
	}
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, backend("get order", err)
	}

	publish(ctx, s.publisher, s.log, events.TopicOrderStatusChanged, order.ID.String(), map[string]interface{}{
		"action":       "order_assigned",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"assigned_to":  assignee.ToResponse(),
		"user":         actorPayload(actor),
	})
	return order, nil
}

func (s *orderService) List(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "must be one of pending, processing, fulfilled, cancelled")
	}
	orders, err := s.orderRepo.FindAll(ctx, status)
	return orders, backend("list orders", err)
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	return order, backend("get order", err)
}
