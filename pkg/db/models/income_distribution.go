package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// IncomeDistribution is one owner's slice of a cash distribution event.
// Exactly one of LegacyInvestmentID / InvestmentTransactionID is set,
// tagging the row to the ledger the ownership came from.
type IncomeDistribution struct {
	ID                      uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID              uuid.UUID                `gorm:"column:property_id;type:uuid;not null;index"`
	UserID                  uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	LegacyInvestmentID      *uuid.UUID               `gorm:"column:investment_id;type:uuid"`
	InvestmentTransactionID *uuid.UUID               `gorm:"column:investment_transaction_id;type:uuid"`
	AmountCents             int64                    `gorm:"column:amount_cents;not null"`
	DistributionType        enums.DistributionType   `gorm:"column:distribution_type;type:text;not null"`
	DistributionDate        time.Time                `gorm:"column:distribution_date;not null"`
	Status                  enums.DistributionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ProcessedAt             *time.Time               `gorm:"column:processed_at"`
	CreatedAt               time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *IncomeDistribution) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
