package tickets

import (
	"errors"
	"fmt"
)

// ErrorCode classifies why a purchase request was rejected
type ErrorCode string

const (
	CodeInvalidAccount        ErrorCode = "INVALID_ACCOUNT"
	CodeInvalidTicketQuantity ErrorCode = "INVALID_TICKET_QUANTITY"
	CodeInvalidTicketCategory ErrorCode = "INVALID_TICKET_CATEGORY"
	CodeAdultRequired         ErrorCode = "ADULT_REQUIRED"
	CodeTooManyTickets        ErrorCode = "TOO_MANY_TICKETS"
)

// ValidationError is returned when a purchase request breaks a purchase rule.
// Index is the offending line item, or -1 when the rule concerns the whole request.
type ValidationError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Index   int       `json:"index"`
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: item %d: %s", e.Code, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any ValidationError carrying the same code
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrInvalidAccount        = &ValidationError{Code: CodeInvalidAccount, Message: "account id must be greater than zero", Index: -1}
	ErrInvalidTicketQuantity = &ValidationError{Code: CodeInvalidTicketQuantity, Message: "ticket quantity must be greater than zero", Index: -1}
	ErrInvalidTicketCategory = &ValidationError{Code: CodeInvalidTicketCategory, Message: "unknown ticket category", Index: -1}
	ErrAdultRequired         = &ValidationError{Code: CodeAdultRequired, Message: "infant and child tickets require an adult ticket", Index: -1}
	ErrTooManyTickets        = &ValidationError{Code: CodeTooManyTickets, Message: fmt.Sprintf("no more than %d tickets can be purchased at a time", MaxTicketsPerPurchase), Index: -1}
)

// IsValidationError reports whether err was produced by a purchase rule
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CodeOf returns the code of a validation error, or "" for any other error
func CodeOf(err error) ErrorCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
