package payments

import (
	"time"

	"github.com/google/uuid"
)

type ChargeStatus string

const (
	ChargeStatusPending   ChargeStatus = "PENDING"
	ChargeStatusCompleted ChargeStatus = "COMPLETED"
	ChargeStatusFailed    ChargeStatus = "FAILED"
)

// Charge is one entry in the payment ledger
type Charge struct {
	ID            uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID     int64        `gorm:"index;not null" json:"account_id"`
	Amount        int          `gorm:"not null" json:"amount"`
	Currency      string       `gorm:"type:varchar(3);default:'GBP'" json:"currency"`
	Status        ChargeStatus `gorm:"type:varchar(20);check:status IN ('PENDING', 'COMPLETED', 'FAILED');default:'PENDING'" json:"status"`
	TransactionID string       `gorm:"unique;not null" json:"transaction_id"`
	FailureReason string       `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time   `json:"processed_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName sets the table name for Charge
func (Charge) TableName() string {
	return "payment_charges"
}

func (c *Charge) IsCompleted() bool {
	return c.Status == ChargeStatusCompleted
}

func (c *Charge) MarkCompleted() {
	c.Status = ChargeStatusCompleted
	now := time.Now()
	c.ProcessedAt = &now
	c.UpdatedAt = now
}

func (c *Charge) MarkFailed(reason string) {
	c.Status = ChargeStatusFailed
	c.FailureReason = reason
	now := time.Now()
	c.ProcessedAt = &now
	c.UpdatedAt = now
}
