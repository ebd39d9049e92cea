package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// LegacyInvestment is the historical investments table from before the
// transaction state machine existed. The schema is structurally different but
// the rows represent the same logical ownership registry, so distribution and
// ledger queries treat both tables as one feed.
type LegacyInvestment struct {
	ID           uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID   uuid.UUID                    `gorm:"column:property_id;type:uuid;not null;index"`
	UserID       uuid.UUID                    `gorm:"column:user_id;type:uuid;not null;index"`
	AmountCents  int64                        `gorm:"column:amount_cents;not null"`
	Shares       int64                        `gorm:"column:shares;not null"`
	OwnershipPpm int64                        `gorm:"column:ownership_ppm;not null"`
	Status       enums.LegacyInvestmentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt    time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name the legacy system wrote to.
func (LegacyInvestment) TableName() string {
	return "investments"
}

func (i *LegacyInvestment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
