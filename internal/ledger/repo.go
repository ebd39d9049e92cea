package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
)

// Repository reads both investment ledgers for a single user.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListLegacyByUser(ctx context.Context, userID uuid.UUID) ([]models.LegacyInvestment, error)
	ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]models.InvestmentTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListLegacyByUser(ctx context.Context, userID uuid.UUID) ([]models.LegacyInvestment, error) {
	var rows []models.LegacyInvestment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]models.InvestmentTransaction, error) {
	var rows []models.InvestmentTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
