package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
)

// Repository reads property rows and derives consumed share counts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	// LockProperty loads the property row holding a row-level lock for the
	// remainder of the surrounding transaction.
	LockProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	SumConsumedShares(ctx context.Context, propertyID uuid.UUID) (int64, error)
}
