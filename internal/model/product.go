package model

import "github.com/shopspring/decimal"

// Product is a menu/catalog item whose stock is tracked by the ledger.
// Products are never hard-deleted; they are deactivated via IsActive.
type Product struct {
	BaseModel
	Name          string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	SKU           string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Category      string          `gorm:"type:varchar(100);index" json:"category"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_price"`
	CurrentStock  int             `gorm:"not null;default:0;check:current_stock >= 0" json:"current_stock"`
	MinStockLevel int             `gorm:"not null;default:0" json:"min_stock_level"`
	MaxStockLevel int             `gorm:"not null;default:0" json:"max_stock_level"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
}

type StockStatus string

const (
	StockLow       StockStatus = "low"
	StockNormal    StockStatus = "normal"
	StockOverstock StockStatus = "overstock"
)

// IsLowStock reports whether the product is at or below its minimum level.
// The threshold is inclusive.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStockLevel
}

func (p *Product) StockStatus() StockStatus {
	if p.IsLowStock() {
		return StockLow
	}
	if p.CurrentStock > p.MaxStockLevel {
		return StockOverstock
	}
	return StockNormal
}

// ProductSummary is the slim product shape embedded in ledger and order responses.
type ProductSummary struct {
	Name string `json:"name"`
	SKU  string `json:"sku"`
}
