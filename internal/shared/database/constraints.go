package database

import (
	"cinematickets/internal/payments"

	"gorm.io/gorm"
)

const chargeAmountConstraint = "chk_payment_charges_amount_non_negative"

// MigrateConstraints adds the ledger constraints AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	// Zero is a valid charge (empty purchase); negative amounts never are
	if !db.Migrator().HasConstraint(&payments.Charge{}, chargeAmountConstraint) {
		err := db.Exec(`
			ALTER TABLE payment_charges
			ADD CONSTRAINT ` + chargeAmountConstraint + `
			CHECK (amount >= 0);
		`).Error
		if err != nil {
			return err
		}
	}

	// Account statements list the newest charges first
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_payment_charges_account_created
		ON payment_charges (account_id, created_at DESC);
	`).Error
}
