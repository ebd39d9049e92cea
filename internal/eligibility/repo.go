package eligibility

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an eligibility repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.EligibilityRecord, error) {
	var record models.EligibilityRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Create(ctx context.Context, record *models.EligibilityRecord) (*models.EligibilityRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) IncrementTotals(ctx context.Context, userID uuid.UUID, amountCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.EligibilityRecord{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"current_year_invested_cents": gorm.Expr("current_year_invested_cents + ?", amountCents),
			"lifetime_invested_cents":     gorm.Expr("lifetime_invested_cents + ?", amountCents),
		}).Error
}
