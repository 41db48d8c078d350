package purchases

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentFailed     = errors.New("payment failed")
	ErrReservationFailed = errors.New("seat reservation failed")
)

// PaymentError reports a charge the payment gateway did not accept.
// Nothing has been charged or reserved.
type PaymentError struct {
	AccountID int64
	Amount    int
	Err       error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment of %d for account %d failed: %v", e.Amount, e.AccountID, e.Err)
}

func (e *PaymentError) Unwrap() []error {
	return []error{ErrPaymentFailed, e.Err}
}

// ReservationError reports seats that could not be reserved after the charge went through.
// ChargedAmount has been taken from the account and is not refunded here.
type ReservationError struct {
	AccountID     int64
	Seats         int
	ChargedAmount int
	Err           error
}

func (e *ReservationError) Error() string {
	return fmt.Sprintf("reservation of %d seats for account %d failed after charging %d: %v",
		e.Seats, e.AccountID, e.ChargedAmount, e.Err)
}

func (e *ReservationError) Unwrap() []error {
	return []error{ErrReservationFailed, e.Err}
}
