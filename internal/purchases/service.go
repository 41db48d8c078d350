package purchases

import (
	"context"
	"log/slog"
	"time"

	"cinematickets/internal/notifications"
	"cinematickets/internal/tickets"
	"cinematickets/pkg/logger"
	"cinematickets/pkg/metrics"
)

// PaymentGateway charges an amount to an account
type PaymentGateway interface {
	Charge(ctx context.Context, accountID int64, amount int) error
}

// SeatReservationService reserves a number of seats for an account
type SeatReservationService interface {
	Reserve(ctx context.Context, accountID int64, seatCount int) error
}

// ReceiptPublisher announces completed purchases
type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, receipt *notifications.Receipt) error
}

// Service interface defines the contract for purchase business logic
type Service interface {
	// Quote validates a request and prices it without charging or reserving anything
	Quote(ctx context.Context, req PurchaseRequest) (*QuoteResponse, error)
	// Purchase validates a request, charges the account, then reserves the seats
	Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error)
}

// Options bounds the calls made to the collaborators. Zero timeouts mean no bound.
type Options struct {
	PaymentTimeout     time.Duration
	ReservationTimeout time.Duration
	Currency           string
}

type service struct {
	payments PaymentGateway
	seats    SeatReservationService
	receipts ReceiptPublisher
	opts     Options
	log      *logger.Logger
}

// NewService creates a purchase service. receipts may be nil.
func NewService(payments PaymentGateway, seats SeatReservationService, receipts ReceiptPublisher, opts Options) Service {
	if opts.Currency == "" {
		opts.Currency = "GBP"
	}
	return &service{
		payments: payments,
		seats:    seats,
		receipts: receipts,
		opts:     opts,
		log:      logger.GetDefault(),
	}
}

func (s *service) Quote(ctx context.Context, req PurchaseRequest) (*QuoteResponse, error) {
	items := req.LineItems()
	summary, err := tickets.Validate(req.AccountID, items)
	if err != nil {
		return nil, err
	}

	return &QuoteResponse{
		AccountID: req.AccountID,
		Lines:     priceLines(items),
		Summary:   summary,
		Currency:  s.opts.Currency,
	}, nil
}

func (s *service) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error) {
	// Step 1: Validate and price the request
	items := req.LineItems()
	summary, err := tickets.Validate(req.AccountID, items)
	if err != nil {
		s.log.LogPurchaseRejected(ctx, req.AccountID, string(tickets.CodeOf(err)), err)
		metrics.RecordPurchase(metrics.OutcomeRejected, string(tickets.CodeOf(err)))
		return nil, err
	}

	// Step 2: Charge the account; nothing is reserved unless this succeeds
	if err := s.charge(ctx, req.AccountID, summary.TotalPrice); err != nil {
		s.log.LogCollaboratorFailure(ctx, "payment", req.AccountID, err)
		metrics.RecordPurchase(metrics.OutcomePaymentFailed, "")
		return nil, &PaymentError{AccountID: req.AccountID, Amount: summary.TotalPrice, Err: err}
	}
	metrics.RecordRevenue(summary.TotalPrice)

	// Step 3: Reserve the seats. No refund is attempted on failure; the caller gets the charged amount.
	if err := s.reserve(ctx, req.AccountID, summary.TotalSeats); err != nil {
		s.log.LogCollaboratorFailure(ctx, "seat_reservation", req.AccountID, err)
		metrics.RecordPurchase(metrics.OutcomeReservationFailed, "")
		return nil, &ReservationError{
			AccountID:     req.AccountID,
			Seats:         summary.TotalSeats,
			ChargedAmount: summary.TotalPrice,
			Err:           err,
		}
	}

	lines := priceLines(items)
	for _, line := range lines {
		metrics.RecordSale(line.Type, line.Quantity)
	}
	metrics.RecordPurchase(metrics.OutcomeCompleted, "")
	s.log.LogPurchaseCompleted(ctx, req.AccountID, summary.TotalTickets, summary.TotalPrice, summary.TotalSeats)

	// Step 4: Publish the receipt
	receipt := notifications.NewReceipt(req.AccountID, s.opts.Currency, receiptLines(lines),
		summary.TotalTickets, summary.TotalPrice, summary.TotalSeats)

	published := false
	if s.receipts != nil {
		if err := s.receipts.PublishReceipt(ctx, receipt); err != nil {
			s.log.ErrorContext(ctx, "Failed to publish receipt",
				slog.String("receipt_id", receipt.ID.String()),
				slog.Int64("account_id", req.AccountID),
				slog.Any("error", err),
			)
		} else {
			published = true
		}
	}

	return &PurchaseResponse{
		AccountID:        req.AccountID,
		Lines:            lines,
		Summary:          summary,
		Currency:         s.opts.Currency,
		ReceiptID:        receipt.ID.String(),
		ReceiptPublished: published,
		CompletedAt:      receipt.CreatedAt,
	}, nil
}

func (s *service) charge(ctx context.Context, accountID int64, amount int) error {
	ctx, cancel := withOptionalTimeout(ctx, s.opts.PaymentTimeout)
	defer cancel()
	return s.payments.Charge(ctx, accountID, amount)
}

func (s *service) reserve(ctx context.Context, accountID int64, seats int) error {
	ctx, cancel := withOptionalTimeout(ctx, s.opts.ReservationTimeout)
	defer cancel()
	return s.seats.Reserve(ctx, accountID, seats)
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func receiptLines(lines []PriceLine) []notifications.ReceiptLine {
	out := make([]notifications.ReceiptLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, notifications.ReceiptLine{Type: l.Type, Quantity: l.Quantity, Price: l.Price})
	}
	return out
}
