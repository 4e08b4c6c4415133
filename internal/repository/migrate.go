package repository

import (
	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Product{},
		&model.InventoryHistory{},
	)
}
