package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// InvestmentCreatedEvent signals a new investment transaction in pending state.
type InvestmentCreatedEvent struct {
	InvestmentTransactionID uuid.UUID `json:"investment_transaction_id"`
	PropertyID              uuid.UUID `json:"property_id"`
	UserID                  uuid.UUID `json:"user_id"`
	Shares                  int64     `json:"shares"`
	TotalAmountCents        int64     `json:"total_amount_cents"`
}

// SharesReservedEvent is emitted when inventory is committed to a transaction.
type SharesReservedEvent struct {
	InvestmentTransactionID uuid.UUID `json:"investment_transaction_id"`
	PropertyID              uuid.UUID `json:"property_id"`
	UserID                  uuid.UUID `json:"user_id"`
	Shares                  int64     `json:"shares"`
	ReservationExpiresAt    time.Time `json:"reservation_expires_at"`
}

// PaymentReceivedEvent reports confirmed payment for a reserved transaction.
type PaymentReceivedEvent struct {
	InvestmentTransactionID uuid.UUID           `json:"investment_transaction_id"`
	PropertyID              uuid.UUID           `json:"property_id"`
	UserID                  uuid.UUID           `json:"user_id"`
	AmountCents             int64               `json:"amount_cents"`
	PaymentReference        string              `json:"payment_reference"`
	PaymentMethod           enums.PaymentMethod `json:"payment_method"`
}

// InvestmentCompletedEvent surfaces the final ownership grant.
type InvestmentCompletedEvent struct {
	InvestmentTransactionID uuid.UUID `json:"investment_transaction_id"`
	PropertyID              uuid.UUID `json:"property_id"`
	UserID                  uuid.UUID `json:"user_id"`
	Shares                  int64     `json:"shares"`
	OwnershipPpm            int64     `json:"ownership_ppm"`
	CompletedAt             time.Time `json:"completed_at"`
}

// InvestmentCancelledEvent is emitted for both user cancellations and
// reservation expiry.
type InvestmentCancelledEvent struct {
	InvestmentTransactionID uuid.UUID `json:"investment_transaction_id"`
	PropertyID              uuid.UUID `json:"property_id"`
	UserID                  uuid.UUID `json:"user_id"`
	Shares                  int64     `json:"shares"`
	Reason                  string    `json:"reason,omitempty"`
	Expired                 bool      `json:"expired"`
}

// DistributionCreatedEvent reports one allocated payout row.
type DistributionCreatedEvent struct {
	DistributionID   uuid.UUID                `json:"distribution_id"`
	PropertyID       uuid.UUID                `json:"property_id"`
	UserID           uuid.UUID                `json:"user_id"`
	AmountCents      int64                    `json:"amount_cents"`
	DistributionType enums.DistributionType   `json:"distribution_type"`
	DistributionDate time.Time                `json:"distribution_date"`
	Status           enums.DistributionStatus `json:"status"`
}

// DistributionProcessedEvent marks a payout as paid out.
type DistributionProcessedEvent struct {
	DistributionID uuid.UUID `json:"distribution_id"`
	PropertyID     uuid.UUID `json:"property_id"`
	UserID         uuid.UUID `json:"user_id"`
	AmountCents    int64     `json:"amount_cents"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// CertificateIssuedEvent signals that an ownership certificate was generated.
type CertificateIssuedEvent struct {
	InvestmentTransactionID uuid.UUID `json:"investment_transaction_id"`
	PropertyID              uuid.UUID `json:"property_id"`
	UserID                  uuid.UUID `json:"user_id"`
	CertificateRef          string    `json:"certificate_ref"`
	IssuedAt                time.Time `json:"issued_at"`
}

// NotificationRequestedEvent tells downstream systems to alert an investor.
type NotificationRequestedEvent struct {
	InvestmentTransactionID uuid.UUID `json:"investment_transaction_id"`
	UserID                  uuid.UUID `json:"user_id"`
	Type                    string    `json:"type"`
}
