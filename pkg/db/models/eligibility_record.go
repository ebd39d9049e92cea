package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// EligibilityRecord holds one investor's KYC/AML standing and running
// investment totals. Created lazily with pending defaults on the first
// eligibility check; totals only ever increase except by explicit admin
// correction outside this core.
type EligibilityRecord struct {
	ID                         uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                     uuid.UUID               `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	IsAccredited               bool                    `gorm:"column:is_accredited;not null;default:false"`
	AccreditationType          enums.AccreditationType `gorm:"column:accreditation_type;type:text;not null;default:'none'"`
	KYCStatus                  enums.KYCStatus         `gorm:"column:kyc_status;type:text;not null;default:'pending'"`
	AMLStatus                  enums.AMLStatus         `gorm:"column:aml_status;type:text;not null;default:'pending'"`
	AnnualInvestmentLimitCents *int64                  `gorm:"column:annual_investment_limit_cents"`
	CurrentYearInvestedCents   int64                   `gorm:"column:current_year_invested_cents;not null;default:0"`
	LifetimeInvestedCents      int64                   `gorm:"column:lifetime_invested_cents;not null;default:0"`
	CreatedAt                  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *EligibilityRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
