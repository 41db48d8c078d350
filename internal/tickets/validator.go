package tickets

import "fmt"

// MaxTicketsPerPurchase caps the number of tickets in a single purchase
const MaxTicketsPerPurchase = 20

// Validate decides whether a purchase request is admissible and, if so, returns its summary.
// Rules are applied in order and the first one that fails is returned:
//
//  1. the account id must be at least 1
//  2. every line item must request a positive quantity of a known category
//  3. infant and child tickets must be accompanied by at least one adult ticket
//  4. the total number of tickets must not exceed MaxTicketsPerPurchase
//
// An empty request is admissible and yields a zero summary.
// Validate performs no I/O and is safe for concurrent use.
func Validate(accountID int64, items []LineItem) (Summary, error) {
	if violations := Violations(accountID, items); len(violations) > 0 {
		return Summary{}, violations[0]
	}
	return Summarize(items), nil
}

// Violations returns every rule the request breaks, in the order Validate checks them.
// The result is nil for an admissible request.
func Violations(accountID int64, items []LineItem) []error {
	var errs []error

	if accountID < 1 {
		errs = append(errs, &ValidationError{
			Code:    CodeInvalidAccount,
			Message: fmt.Sprintf("account id %d must be greater than zero", accountID),
			Index:   -1,
		})
	}

	for i, item := range items {
		if item.Quantity <= 0 {
			errs = append(errs, &ValidationError{
				Code:    CodeInvalidTicketQuantity,
				Message: fmt.Sprintf("%s quantity %d must be greater than zero", item.Category, item.Quantity),
				Index:   i,
			})
		}
		if !item.Category.IsValid() {
			errs = append(errs, &ValidationError{
				Code:    CodeInvalidTicketCategory,
				Message: fmt.Sprintf("unknown ticket category %q", item.Category),
				Index:   i,
			})
		}
	}

	if needsAdult(items) && !hasAdult(items) {
		errs = append(errs, &ValidationError{
			Code:    CodeAdultRequired,
			Message: ErrAdultRequired.Message,
			Index:   -1,
		})
	}

	if exceedsCap(items) {
		errs = append(errs, &ValidationError{
			Code:    CodeTooManyTickets,
			Message: ErrTooManyTickets.Message,
			Index:   -1,
		})
	}

	return errs
}

// Summarize aggregates line items without validating them.
// Items of the same category are added up, not merged.
func Summarize(items []LineItem) Summary {
	var s Summary
	for _, item := range items {
		s.TotalTickets += item.Quantity
		s.TotalPrice += item.Price()
		s.TotalSeats += item.Seats()
	}
	return s
}

func needsAdult(items []LineItem) bool {
	for _, item := range items {
		if item.Category.RequiresAdult() {
			return true
		}
	}
	return false
}

func hasAdult(items []LineItem) bool {
	for _, item := range items {
		if item.Category.Supervises() {
			return true
		}
	}
	return false
}

// exceedsCap sums positive quantities and stops as soon as the cap is passed,
// so very large quantities cannot overflow the running total.
func exceedsCap(items []LineItem) bool {
	total := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if item.Quantity > MaxTicketsPerPurchase-total {
			return true
		}
		total += item.Quantity
	}
	return false
}
