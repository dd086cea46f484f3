package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrStaleStock is returned when a guarded stock update finds the row changed
// since it was read.
var ErrStaleStock = errors.New("stock changed concurrently")

// ErrStaleStatus is the order-status equivalent of ErrStaleStock.
var ErrStaleStatus = errors.New("order status changed concurrently")

// ErrDuplicateOrderNumber is returned when an insert hits the unique index on
// orders.order_number.
var ErrDuplicateOrderNumber = errors.New("order number already taken")

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
