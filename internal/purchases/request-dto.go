package purchases

import (
	"strings"

	"cinematickets/internal/tickets"
)

// TicketRequest is one line item of a purchase request
type TicketRequest struct {
	Type     string `json:"type" validate:"required"`
	Quantity int    `json:"quantity"`
}

// PurchaseRequest is the body of the quote and purchase endpoints.
// Business rules (account, quantities, composition, volume) are left to the tickets package
// so that they are reported with their own error codes.
type PurchaseRequest struct {
	AccountID int64           `json:"account_id"`
	Tickets   []TicketRequest `json:"tickets" validate:"max=100,dive"`
}

// LineItems converts the request into ticket line items, keeping order and duplicates
func (r PurchaseRequest) LineItems() []tickets.LineItem {
	items := make([]tickets.LineItem, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		items = append(items, tickets.NewLineItem(
			tickets.Category(strings.ToUpper(strings.TrimSpace(t.Type))),
			t.Quantity,
		))
	}
	return items
}
