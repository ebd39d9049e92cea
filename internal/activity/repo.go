package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/pagination"
)

// Repository appends and reads investment audit rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, row *models.InvestmentActivity) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.InvestmentActivity, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an activity repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, row *models.InvestmentActivity) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListByTransaction(ctx context.Context, transactionID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.InvestmentActivity, error) {
	q := r.db.WithContext(ctx).
		Where("investment_transaction_id = ?", transactionID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.InvestmentActivity
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
