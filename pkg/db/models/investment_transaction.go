package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// OwnershipScale is the fixed-point denominator for ownership percentages:
// 100% of a property is 1,000,000 parts-per-million. Integer ppm avoids
// floating point drift in distribution math.
const OwnershipScale int64 = 1_000_000

// InvestmentTransaction is the current-ledger investment record. It is created
// by the investor-facing API, mutated only by the transaction state machine,
// and read-only afterward except for ExitedAt and distribution bookkeeping.
type InvestmentTransaction struct {
	ID                    uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID            uuid.UUID                   `gorm:"column:property_id;type:uuid;not null;index"`
	UserID                uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;index"`
	NumberOfShares        int64                       `gorm:"column:number_of_shares;not null"`
	PricePerShareCents    int64                       `gorm:"column:price_per_share_cents;not null"`
	InvestmentAmountCents int64                       `gorm:"column:investment_amount_cents;not null"`
	PlatformFeeCents      int64                       `gorm:"column:platform_fee_cents;not null"`
	ProcessingFeeCents    int64                       `gorm:"column:processing_fee_cents;not null"`
	TotalAmountCents      int64                       `gorm:"column:total_amount_cents;not null"`
	OwnershipPpm          int64                       `gorm:"column:ownership_ppm;not null"`
	Status                enums.TransactionStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus         enums.PaymentStatus         `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	PaymentReference      *string                     `gorm:"column:payment_reference"`
	PaymentMethod         *enums.PaymentMethod        `gorm:"column:payment_method;type:text"`
	ReservedAt            *time.Time                  `gorm:"column:reserved_at"`
	ReservationExpiresAt  *time.Time                  `gorm:"column:reservation_expires_at;index"`
	PaidAt                *time.Time                  `gorm:"column:paid_at"`
	CompletedAt           *time.Time                  `gorm:"column:completed_at"`
	CertificateIssued     bool                        `gorm:"column:certificate_issued;not null;default:false"`
	CertificateIssuedAt   *time.Time                  `gorm:"column:certificate_issued_at"`
	CertificateRef        *string                     `gorm:"column:certificate_ref"`
	DistributionFrequency enums.DistributionFrequency `gorm:"column:distribution_frequency;type:text;not null;default:'quarterly'"`
	ExitedAt              *time.Time                  `gorm:"column:exited_at"`
	CreatedAt             time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *InvestmentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
