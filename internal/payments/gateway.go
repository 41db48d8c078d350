package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cinematickets/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount  = errors.New("charge amount must not be negative")
	ErrInvalidAccount = errors.New("charge account must be greater than zero")
)

// LedgerGateway is a payment gateway that settles every charge into the ledger
type LedgerGateway struct {
	repo     Repository
	currency string
	log      *logger.Logger
}

func NewLedgerGateway(repo Repository, currency string) *LedgerGateway {
	return &LedgerGateway{
		repo:     repo,
		currency: currency,
		log:      logger.GetDefault(),
	}
}

// Charge records amount against accountID. A charge that cannot be
// written is reported; one that cannot be settled is marked FAILED.
func (g *LedgerGateway) Charge(ctx context.Context, accountID int64, amount int) error {
	if accountID < 1 {
		return ErrInvalidAccount
	}
	if amount < 0 {
		return ErrInvalidAmount
	}

	charge := &Charge{
		AccountID:     accountID,
		Amount:        amount,
		Currency:      g.currency,
		Status:        ChargeStatusPending,
		TransactionID: "txn_" + uuid.NewString(),
	}

	if err := g.repo.CreateCharge(ctx, charge); err != nil {
		return fmt.Errorf("failed to record charge: %w", err)
	}

	charge.MarkCompleted()
	if err := g.repo.UpdateCharge(ctx, charge); err != nil {
		charge.MarkFailed(err.Error())
		if markErr := g.repo.UpdateCharge(context.WithoutCancel(ctx), charge); markErr != nil {
			g.log.ErrorContext(ctx, "Failed to mark charge as failed",
				slog.String("transaction_id", charge.TransactionID),
				slog.Any("error", markErr),
			)
		}
		return fmt.Errorf("failed to settle charge %s: %w", charge.TransactionID, err)
	}

	g.log.InfoContext(ctx, "Charge settled",
		slog.Int64("account_id", accountID),
		slog.Int("amount", amount),
		slog.String("currency", g.currency),
		slog.String("transaction_id", charge.TransactionID),
	)
	return nil
}
