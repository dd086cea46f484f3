package database

import (
	"go-resto-ops/internal/model"

	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Profile{},
		&model.Product{},
		&model.StockTransaction{},
		&model.Order{},
		&model.OrderItem{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
