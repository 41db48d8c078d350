package payments

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateCharge(ctx context.Context, charge *Charge) error
	UpdateCharge(ctx context.Context, charge *Charge) error
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]Charge, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateCharge(ctx context.Context, charge *Charge) error {
	return r.db.WithContext(ctx).Create(charge).Error
}

func (r *repository) UpdateCharge(ctx context.Context, charge *Charge) error {
	return r.db.WithContext(ctx).
		Model(&Charge{}).
		Where("id = ?", charge.ID).
		Updates(map[string]interface{}{
			"status":         charge.Status,
			"failure_reason": charge.FailureReason,
			"processed_at":   charge.ProcessedAt,
			"updated_at":     charge.UpdatedAt,
		}).Error
}

func (r *repository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]Charge, error) {
	if limit <= 0 {
		limit = 10
	}

	var charges []Charge
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&charges).Error
	return charges, err
}
