package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repository) LockProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	q := r.db.WithContext(ctx)
	// sqlite has no row locks; its single-writer model covers the test path.
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var property models.Property
	if err := q.Where("id = ?", id).First(&property).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repository) SumConsumedShares(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.InvestmentTransaction{}).
		Select("COALESCE(SUM(number_of_shares), 0)").
		Where("property_id = ?", propertyID).
		Where("status IN ?", []enums.TransactionStatus{
			enums.TransactionStatusReserved,
			enums.TransactionStatusProcessing,
			enums.TransactionStatusCompleted,
		}).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
