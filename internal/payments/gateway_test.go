package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	charges   []Charge
	createErr error
	updateErr error
	updates   int
}

func (f *fakeRepository) CreateCharge(ctx context.Context, charge *Charge) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.charges = append(f.charges, *charge)
	return nil
}

func (f *fakeRepository) UpdateCharge(ctx context.Context, charge *Charge) error {
	f.updates++
	if f.updateErr != nil && charge.Status == ChargeStatusCompleted {
		return f.updateErr
	}
	for i := range f.charges {
		if f.charges[i].TransactionID == charge.TransactionID {
			f.charges[i] = *charge
		}
	}
	return nil
}

func (f *fakeRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]Charge, error) {
	var out []Charge
	for _, c := range f.charges {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestLedgerGateway_Charge(t *testing.T) {
	repo := &fakeRepository{}
	gw := NewLedgerGateway(repo, "GBP")

	require.NoError(t, gw.Charge(context.Background(), 3, 210))

	charges, err := repo.ListByAccount(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Len(t, charges, 1)
	assert.Equal(t, 210, charges[0].Amount)
	assert.Equal(t, "GBP", charges[0].Currency)
	assert.True(t, charges[0].IsCompleted())
	assert.NotNil(t, charges[0].ProcessedAt)
	assert.Contains(t, charges[0].TransactionID, "txn_")
}

func TestLedgerGateway_ZeroAmountIsRecorded(t *testing.T) {
	repo := &fakeRepository{}
	gw := NewLedgerGateway(repo, "GBP")

	require.NoError(t, gw.Charge(context.Background(), 1, 0))
	assert.Len(t, repo.charges, 1)
}

func TestLedgerGateway_RejectsBadInput(t *testing.T) {
	repo := &fakeRepository{}
	gw := NewLedgerGateway(repo, "GBP")

	assert.ErrorIs(t, gw.Charge(context.Background(), 0, 20), ErrInvalidAccount)
	assert.ErrorIs(t, gw.Charge(context.Background(), 1, -1), ErrInvalidAmount)
	assert.Empty(t, repo.charges)
}

func TestLedgerGateway_RecordFailure(t *testing.T) {
	dbErr := errors.New("connection refused")
	gw := NewLedgerGateway(&fakeRepository{createErr: dbErr}, "GBP")

	err := gw.Charge(context.Background(), 1, 20)
	assert.ErrorIs(t, err, dbErr)
}

func TestLedgerGateway_SettleFailureMarksChargeFailed(t *testing.T) {
	dbErr := errors.New("serialization failure")
	repo := &fakeRepository{updateErr: dbErr}
	gw := NewLedgerGateway(repo, "GBP")

	err := gw.Charge(context.Background(), 1, 20)
	assert.ErrorIs(t, err, dbErr)
	require.Len(t, repo.charges, 1)
	assert.Equal(t, ChargeStatusFailed, repo.charges[0].Status)
	assert.Equal(t, "serialization failure", repo.charges[0].FailureReason)
}
