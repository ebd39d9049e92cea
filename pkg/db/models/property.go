package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// Property is the fractionalized asset investors buy shares of. TotalShares is
// immutable once funding opens; the row is otherwise owned by the admin CRUD
// surface outside this core.
type Property struct {
	ID                    uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title                 string                      `gorm:"column:title;not null"`
	TotalShares           int64                       `gorm:"column:total_shares;not null"`
	SharePriceCents       int64                       `gorm:"column:share_price_cents;not null"`
	FundingOpen           bool                        `gorm:"column:funding_open;not null;default:true"`
	DistributionFrequency enums.DistributionFrequency `gorm:"column:distribution_frequency;type:text;not null;default:'quarterly'"`
	CreatedAt             time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
