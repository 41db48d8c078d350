package purchases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinematickets/internal/notifications"
	"cinematickets/internal/tickets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callLog records collaborator calls in the order they happen
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

type fakeGateway struct {
	log       *callLog
	err       error
	block     bool
	accountID int64
	amount    int
}

func (f *fakeGateway) Charge(ctx context.Context, accountID int64, amount int) error {
	f.log.add("charge")
	f.accountID, f.amount = accountID, amount
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

type fakeSeats struct {
	log       *callLog
	err       error
	accountID int64
	seats     int
}

func (f *fakeSeats) Reserve(ctx context.Context, accountID int64, seatCount int) error {
	f.log.add("reserve")
	f.accountID, f.seats = accountID, seatCount
	return f.err
}

type fakeReceipts struct {
	log      *callLog
	err      error
	receipts []*notifications.Receipt
}

func (f *fakeReceipts) PublishReceipt(ctx context.Context, receipt *notifications.Receipt) error {
	f.log.add("receipt")
	if f.err != nil {
		return f.err
	}
	f.receipts = append(f.receipts, receipt)
	return nil
}

type fixture struct {
	calls    *callLog
	gateway  *fakeGateway
	seats    *fakeSeats
	receipts *fakeReceipts
	service  Service
}

func newFixture(opts Options) *fixture {
	calls := &callLog{}
	f := &fixture{
		calls:    calls,
		gateway:  &fakeGateway{log: calls},
		seats:    &fakeSeats{log: calls},
		receipts: &fakeReceipts{log: calls},
	}
	f.service = NewService(f.gateway, f.seats, f.receipts, opts)
	return f
}

func request(accountID int64, tickets ...TicketRequest) PurchaseRequest {
	return PurchaseRequest{AccountID: accountID, Tickets: tickets}
}

func ticket(t string, q int) TicketRequest {
	return TicketRequest{Type: t, Quantity: q}
}

func TestPurchase_ChargesThenReserves(t *testing.T) {
	f := newFixture(Options{})

	resp, err := f.service.Purchase(context.Background(), request(1, ticket("ADULT", 1), ticket("CHILD", 19)))
	require.NoError(t, err)

	assert.Equal(t, []string{"charge", "reserve", "receipt"}, f.calls.calls)
	assert.Equal(t, int64(1), f.gateway.accountID)
	assert.Equal(t, 210, f.gateway.amount)
	assert.Equal(t, int64(1), f.seats.accountID)
	assert.Equal(t, 20, f.seats.seats)

	assert.Equal(t, tickets.Summary{TotalTickets: 20, TotalPrice: 210, TotalSeats: 20}, resp.Summary)
	assert.Equal(t, "GBP", resp.Currency)
	assert.True(t, resp.ReceiptPublished)
	require.Len(t, f.receipts.receipts, 1)
	assert.Equal(t, resp.ReceiptID, f.receipts.receipts[0].ID.String())
	assert.Len(t, resp.Lines, 2)
}

func TestPurchase_InfantsAreNotSeated(t *testing.T) {
	f := newFixture(Options{})

	resp, err := f.service.Purchase(context.Background(), request(8, ticket("adult", 1), ticket("infant", 5)))
	require.NoError(t, err)

	assert.Equal(t, 20, f.gateway.amount)
	assert.Equal(t, 1, f.seats.seats)
	assert.Equal(t, 6, resp.TotalTickets)
}

func TestPurchase_EmptyRequestStillCallsCollaborators(t *testing.T) {
	f := newFixture(Options{})

	resp, err := f.service.Purchase(context.Background(), request(1))
	require.NoError(t, err)

	assert.Equal(t, tickets.Summary{}, resp.Summary)
	assert.Equal(t, []string{"charge", "reserve", "receipt"}, f.calls.calls)
	assert.Zero(t, f.gateway.amount)
	assert.Zero(t, f.seats.seats)
}

func TestPurchase_ValidationErrorsSkipCollaborators(t *testing.T) {
	tests := []struct {
		name string
		req  PurchaseRequest
		want error
	}{
		{"bad account", request(0, ticket("ADULT", 1)), tickets.ErrInvalidAccount},
		{"zero quantity", request(1, ticket("ADULT", 0)), tickets.ErrInvalidTicketQuantity},
		{"no adult", request(1, ticket("INFANT", 1), ticket("CHILD", 1)), tickets.ErrAdultRequired},
		{"too many", request(1, ticket("ADULT", 1), ticket("CHILD", 20)), tickets.ErrTooManyTickets},
		{"unknown type", request(1, ticket("ADULT", 1), ticket("SENIOR", 1)), tickets.ErrInvalidTicketCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Options{})

			resp, err := f.service.Purchase(context.Background(), tt.req)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, ErrPaymentFailed)
			assert.NotErrorIs(t, err, ErrReservationFailed)
			assert.Empty(t, f.calls.calls)
		})
	}
}

func TestPurchase_PaymentFailure(t *testing.T) {
	f := newFixture(Options{})
	declined := errors.New("card declined")
	f.gateway.err = declined

	resp, err := f.service.Purchase(context.Background(), request(4, ticket("ADULT", 2)))
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.ErrorIs(t, err, declined)
	assert.NotErrorIs(t, err, ErrReservationFailed)
	assert.False(t, tickets.IsValidationError(err))

	var paymentErr *PaymentError
	require.True(t, errors.As(err, &paymentErr))
	assert.Equal(t, 40, paymentErr.Amount)
	assert.Equal(t, []string{"charge"}, f.calls.calls)
}

func TestPurchase_ReservationFailureReportsCharge(t *testing.T) {
	f := newFixture(Options{})
	soldOut := errors.New("sold out")
	f.seats.err = soldOut

	resp, err := f.service.Purchase(context.Background(), request(4, ticket("ADULT", 2), ticket("CHILD", 1)))
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrReservationFailed)
	assert.ErrorIs(t, err, soldOut)
	assert.NotErrorIs(t, err, ErrPaymentFailed)

	var reservationErr *ReservationError
	require.True(t, errors.As(err, &reservationErr))
	assert.Equal(t, 50, reservationErr.ChargedAmount)
	assert.Equal(t, 3, reservationErr.Seats)
	assert.Equal(t, []string{"charge", "reserve"}, f.calls.calls)
}

func TestPurchase_ReceiptFailureIsReported(t *testing.T) {
	f := newFixture(Options{})
	f.receipts.err = errors.New("broker down")

	resp, err := f.service.Purchase(context.Background(), request(2, ticket("ADULT", 1)))
	require.NoError(t, err)
	assert.False(t, resp.ReceiptPublished)
	assert.NotEmpty(t, resp.ReceiptID)
}

func TestPurchase_WithoutReceiptPublisher(t *testing.T) {
	calls := &callLog{}
	svc := NewService(&fakeGateway{log: calls}, &fakeSeats{log: calls}, nil, Options{Currency: "EUR"})

	resp, err := svc.Purchase(context.Background(), request(2, ticket("ADULT", 1)))
	require.NoError(t, err)
	assert.False(t, resp.ReceiptPublished)
	assert.Equal(t, "EUR", resp.Currency)
}

func TestPurchase_PaymentTimeout(t *testing.T) {
	f := newFixture(Options{PaymentTimeout: 10 * time.Millisecond})
	f.gateway.block = true

	_, err := f.service.Purchase(context.Background(), request(1, ticket("ADULT", 1)))
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"charge"}, f.calls.calls)
}

func TestQuote_DoesNotTouchCollaborators(t *testing.T) {
	f := newFixture(Options{})

	quote, err := f.service.Quote(context.Background(), request(3, ticket("ADULT", 2), ticket("INFANT", 1)))
	require.NoError(t, err)
	assert.Equal(t, tickets.Summary{TotalTickets: 3, TotalPrice: 40, TotalSeats: 2}, quote.Summary)
	assert.Equal(t, PriceLine{Type: "INFANT", Quantity: 1, UnitPrice: 0, Price: 0, Seats: 0}, quote.Lines[1])
	assert.Empty(t, f.calls.calls)

	_, err = f.service.Quote(context.Background(), request(3, ticket("CHILD", 1)))
	assert.ErrorIs(t, err, tickets.ErrAdultRequired)
}

func TestPriceList(t *testing.T) {
	list := PriceList()
	require.Len(t, list, 3)
	assert.Equal(t, CategoryPrice{Type: "ADULT", Price: 20, OccupiesSeat: true}, list[2])
}
