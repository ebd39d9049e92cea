package investments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an investments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.InvestmentTransaction) (*models.InvestmentTransaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InvestmentTransaction, error) {
	var txn models.InvestmentTransaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) FindProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InvestmentTransaction{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateWhereStatus(ctx context.Context, id uuid.UUID, from enums.TransactionStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InvestmentTransaction{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) FindExpiredReserved(ctx context.Context, now time.Time, limit int) ([]models.InvestmentTransaction, error) {
	var rows []models.InvestmentTransaction
	q := r.db.WithContext(ctx).
		Where("status = ?", enums.TransactionStatusReserved).
		Where("reservation_expires_at <= ?", now).
		Order("reservation_expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
