package purchases

import (
	"time"

	"cinematickets/internal/tickets"
)

// PriceLine shows how a line item contributes to the summary
type PriceLine struct {
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
	Price     int    `json:"price"`
	Seats     int    `json:"seats"`
}

// QuoteResponse is the validated summary of a request that has not been charged
type QuoteResponse struct {
	AccountID int64       `json:"account_id"`
	Lines     []PriceLine `json:"lines"`
	tickets.Summary
	Currency string `json:"currency"`
}

// PurchaseResponse describes a purchase that was charged and seated
type PurchaseResponse struct {
	AccountID int64       `json:"account_id"`
	Lines     []PriceLine `json:"lines"`
	tickets.Summary
	Currency         string    `json:"currency"`
	ReceiptID        string    `json:"receipt_id"`
	ReceiptPublished bool      `json:"receipt_published"`
	CompletedAt      time.Time `json:"completed_at"`
}

// CategoryPrice is one row of the price list
type CategoryPrice struct {
	Type          string `json:"type"`
	Price         int    `json:"price"`
	OccupiesSeat  bool   `json:"occupies_seat"`
	RequiresAdult bool   `json:"requires_adult"`
}

func priceLines(items []tickets.LineItem) []PriceLine {
	lines := make([]PriceLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, PriceLine{
			Type:      item.Category.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.Category.Price(),
			Price:     item.Price(),
			Seats:     item.Seats(),
		})
	}
	return lines
}

// PriceList returns the fixed per-category prices
func PriceList() []CategoryPrice {
	categories := tickets.Categories()
	list := make([]CategoryPrice, 0, len(categories))
	for _, c := range categories {
		list = append(list, CategoryPrice{
			Type:          c.String(),
			Price:         c.Price(),
			OccupiesSeat:  c.OccupiesSeat(),
			RequiresAdult: c.RequiresAdult(),
		})
	}
	return list
}
