package notifications

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ReceiptLine is one ticket type on a receipt
type ReceiptLine struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

// Receipt is published once a purchase has been charged and seated
type Receipt struct {
	ID           uuid.UUID     `json:"id"`
	AccountID    int64         `json:"account_id"`
	Lines        []ReceiptLine `json:"lines"`
	TotalTickets int           `json:"total_tickets"`
	TotalPrice   int           `json:"total_price"`
	TotalSeats   int           `json:"total_seats"`
	Currency     string        `json:"currency"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewReceipt creates a receipt with a fresh id and timestamp
func NewReceipt(accountID int64, currency string, lines []ReceiptLine, totalTickets, totalPrice, totalSeats int) *Receipt {
	return &Receipt{
		ID:           uuid.New(),
		AccountID:    accountID,
		Lines:        lines,
		TotalTickets: totalTickets,
		TotalPrice:   totalPrice,
		TotalSeats:   totalSeats,
		Currency:     currency,
		CreatedAt:    time.Now().UTC(),
	}
}

// ToJSON serializes the receipt
func (r *Receipt) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ReceiptFromJSON deserializes a receipt
func ReceiptFromJSON(data []byte) (*Receipt, error) {
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetPartitionKey keeps every receipt of an account on one partition
func (r *Receipt) GetPartitionKey() string {
	return strconv.FormatInt(r.AccountID, 10)
}
