package eligibility

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
)

// Repository persists per-investor eligibility records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.EligibilityRecord, error)
	Create(ctx context.Context, record *models.EligibilityRecord) (*models.EligibilityRecord, error)
	IncrementTotals(ctx context.Context, userID uuid.UUID, amountCents int64) error
}
