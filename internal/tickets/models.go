package tickets

// LineItem requests Quantity tickets of one Category
type LineItem struct {
	Category Category `json:"type"`
	Quantity int      `json:"quantity"`
}

// NewLineItem builds a line item
func NewLineItem(category Category, quantity int) LineItem {
	return LineItem{Category: category, Quantity: quantity}
}

// Price returns the contribution of the line item to the total price
func (l LineItem) Price() int {
	return l.Category.Price() * l.Quantity
}

// Seats returns the number of seats the line item occupies
func (l LineItem) Seats() int {
	if !l.Category.OccupiesSeat() {
		return 0
	}
	return l.Quantity
}

// Summary is the aggregate of a validated purchase, ready for billing and reservation
type Summary struct {
	TotalTickets int `json:"total_tickets"`
	TotalPrice   int `json:"total_price"`
	TotalSeats   int `json:"total_seats"`
}

// IsEmpty reports whether the summary describes no tickets at all
func (s Summary) IsEmpty() bool {
	return s.TotalTickets == 0
}
