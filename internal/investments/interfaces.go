package investments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// Repository persists investment transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.InvestmentTransaction) (*models.InvestmentTransaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.InvestmentTransaction, error)
	FindProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// UpdateWhereStatus applies updates only when the row is still in the
	// expected status, returning rows affected so callers can detect a lost
	// race as a state conflict.
	UpdateWhereStatus(ctx context.Context, id uuid.UUID, from enums.TransactionStatus, updates map[string]any) (int64, error)
	// FindExpiredReserved returns reserved rows whose reservation lapsed at or
	// before the given moment.
	FindExpiredReserved(ctx context.Context, now time.Time, limit int) ([]models.InvestmentTransaction, error)
}
