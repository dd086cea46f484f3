package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderFulfilled  OrderStatus = "fulfilled"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions holds the forward-only status graph. Fulfilled and
// cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderFulfilled, OrderCancelled},
	OrderProcessing: {OrderFulfilled, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderFulfilled, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderFulfilled || s == OrderCancelled
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	BaseModel
	OrderNumber   string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail string          `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone string          `gorm:"type:varchar(50)" json:"customer_phone"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	OrderSource   string          `gorm:"type:varchar(50)" json:"order_source"`
	Notes         string          `gorm:"type:text" json:"notes"`

	CreatedByID  *uuid.UUID `gorm:"type:uuid;index" json:"created_by_id,omitempty"`
	AssignedToID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo   *Profile   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

type OrderItem struct {
	BaseModel
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
}

// LineTotal returns quantity x unit price.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems returns the sum of the item totals; TotalAmount must always equal it.
func (o *Order) SumItems() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].TotalPrice)
	}
	return total
}
