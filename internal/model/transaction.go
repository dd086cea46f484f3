package model

import "github.com/google/uuid"

type TransactionType string

const (
	TxAdjustment TransactionType = "adjustment"
	TxRestock    TransactionType = "restock"
	TxDamage     TransactionType = "damage"
	TxReturn     TransactionType = "return"
	TxSale       TransactionType = "sale"
)

// IsManual reports whether the type may be recorded through a manual adjustment.
// Sales only enter the ledger through order fulfillment.
func (t TransactionType) IsManual() bool {
	switch t {
	case TxAdjustment, TxRestock, TxDamage, TxReturn:
		return true
	}
	return false
}

// StockTransaction is one append-only ledger row. Rows are never updated or deleted.
// Invariant: NewStock == PreviousStock + QuantityChange and NewStock >= 0.
type StockTransaction struct {
	BaseModel
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null;index" json:"transaction_type"`
	QuantityChange  int             `gorm:"not null" json:"quantity_change"`
	PreviousStock   int             `gorm:"not null" json:"previous_stock"`
	NewStock        int             `gorm:"not null" json:"new_stock"`
	ReferenceID     *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes"`

	CreatedByID *uuid.UUID `gorm:"type:uuid;index" json:"created_by_id,omitempty"`
	Creator     *Profile   `gorm:"foreignKey:CreatedByID" json:"creator,omitempty"`
}

func (StockTransaction) TableName() string {
	return "inventory_transactions"
}

// Consistent reports whether the row satisfies the ledger invariant.
func (t *StockTransaction) Consistent() bool {
	return t.NewStock >= 0 && t.NewStock-t.PreviousStock == t.QuantityChange
}
