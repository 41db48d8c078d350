package database

import (
	"cinematickets/internal/payments"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&payments.Charge{},
	)
}
