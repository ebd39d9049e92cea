package distributions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// Owner is one share-owning position eligible for a payout. Exactly one of
// LegacyInvestmentID / InvestmentTransactionID is set, tagging the position
// to the ledger it came from.
type Owner struct {
	UserID                  uuid.UUID
	OwnershipPpm            int64
	LegacyInvestmentID      *uuid.UUID
	InvestmentTransactionID *uuid.UUID
}

// OwnershipSource yields the active owning positions of a property from one
// ledger. Reads run inside the distribution transaction so both ledgers are
// seen in a single snapshot.
type OwnershipSource interface {
	Owners(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) ([]Owner, error)
}

type legacySource struct{}

// NewLegacySource reads the historical investments table. Confirmed and
// active rows own shares; pending, exited and cancelled do not.
func NewLegacySource() OwnershipSource {
	return legacySource{}
}

func (legacySource) Owners(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) ([]Owner, error) {
	var rows []models.LegacyInvestment
	err := tx.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status IN ?", []enums.LegacyInvestmentStatus{
			enums.LegacyInvestmentStatusConfirmed,
			enums.LegacyInvestmentStatusActive,
		}).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	owners := make([]Owner, 0, len(rows))
	for _, row := range rows {
		id := row.ID
		owners = append(owners, Owner{
			UserID:             row.UserID,
			OwnershipPpm:       row.OwnershipPpm,
			LegacyInvestmentID: &id,
		})
	}
	return owners, nil
}

type transactionSource struct{}

// NewTransactionSource reads the current ledger. Only completed transactions
// that have not exited own shares.
func NewTransactionSource() OwnershipSource {
	return transactionSource{}
}

func (transactionSource) Owners(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) ([]Owner, error) {
	var rows []models.InvestmentTransaction
	err := tx.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status = ?", enums.TransactionStatusCompleted).
		Where("exited_at IS NULL").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	owners := make([]Owner, 0, len(rows))
	for _, row := range rows {
		id := row.ID
		owners = append(owners, Owner{
			UserID:                  row.UserID,
			OwnershipPpm:            row.OwnershipPpm,
			InvestmentTransactionID: &id,
		})
	}
	return owners, nil
}
