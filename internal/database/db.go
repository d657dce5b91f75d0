package database

import (
	"pdv-backend/internal/config"
	"pdv-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and runs the schema migration. The handle is
// returned to the caller and threaded through handler constructors; nothing
// in this package holds it.
func Open(cfg *config.Config) (*gorm.DB, error) {
	// TranslateError surfaces unique-index violations as
	// gorm.ErrDuplicatedKey so handlers can answer with a conflict
	// instead of a generic failure.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate is separate from Open so tests can run it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Stock{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
	)
}
