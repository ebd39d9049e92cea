package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// InvestmentActivity is an append-only audit row describing one state
// transition or side effect on an investment transaction. Rows are never
// updated or deleted.
type InvestmentActivity struct {
	ID                      uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvestmentTransactionID uuid.UUID          `gorm:"column:investment_transaction_id;type:uuid;not null;index"`
	ActivityType            enums.ActivityType `gorm:"column:activity_type;type:text;not null"`
	Description             string             `gorm:"column:description;not null"`
	PerformedBy             string             `gorm:"column:performed_by;not null"`
	CreatedAt               time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (a *InvestmentActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
