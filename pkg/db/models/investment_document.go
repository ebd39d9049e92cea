package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvestmentDocument is a subscription agreement or disclosure attached to a
// transaction. Its signature lifecycle is independent of the transaction's:
// a transaction can complete before every document is signed.
type InvestmentDocument struct {
	ID                      uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvestmentTransactionID uuid.UUID  `gorm:"column:investment_transaction_id;type:uuid;not null;index"`
	DocType                 string     `gorm:"column:doc_type;not null"`
	Signed                  bool       `gorm:"column:signed;not null;default:false"`
	SignedAt                *time.Time `gorm:"column:signed_at"`
	SignatureData           *string    `gorm:"column:signature_data"`
	CreatedAt               time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *InvestmentDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
