package certificates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
)

// Document is the certificate body stored for a completed investment.
type Document struct {
	CertificateNumber       string    `json:"certificate_number"`
	InvestmentTransactionID uuid.UUID `json:"investment_transaction_id"`
	PropertyID              uuid.UUID `json:"property_id"`
	UserID                  uuid.UUID `json:"user_id"`
	Shares                  int64     `json:"shares"`
	OwnershipPpm            int64     `json:"ownership_ppm"`
	TotalAmountCents        int64     `json:"total_amount_cents"`
	IssuedAt                time.Time `json:"issued_at"`
}

// Issuer writes an ownership certificate to the external document store and
// returns a durable reference to it. Issuance is best-effort: callers must
// never roll back a completed investment because the store was down.
type Issuer interface {
	Issue(ctx context.Context, txn *models.InvestmentTransaction) (string, error)
}

// ObjectWriter is the storage surface the GCS-backed issuer needs.
type ObjectWriter interface {
	WriteObject(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

type gcsIssuer struct {
	store ObjectWriter
	now   func() time.Time
}

// NewGCSIssuer builds an issuer that stores certificate documents as JSON
// objects in the configured bucket.
func NewGCSIssuer(store ObjectWriter) (Issuer, error) {
	if store == nil {
		return nil, fmt.Errorf("object writer required")
	}
	return &gcsIssuer{store: store, now: time.Now}, nil
}

func (i *gcsIssuer) Issue(ctx context.Context, txn *models.InvestmentTransaction) (string, error) {
	if txn == nil {
		return "", fmt.Errorf("transaction required")
	}

	issuedAt := i.now().UTC()
	doc := Document{
		CertificateNumber:       fmt.Sprintf("BV-%s-%s", issuedAt.Format("20060102"), shortID(txn.ID)),
		InvestmentTransactionID: txn.ID,
		PropertyID:              txn.PropertyID,
		UserID:                  txn.UserID,
		Shares:                  txn.NumberOfShares,
		OwnershipPpm:            txn.OwnershipPpm,
		TotalAmountCents:        txn.TotalAmountCents,
		IssuedAt:                issuedAt,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal certificate: %w", err)
	}

	objectName := fmt.Sprintf("certificates/%s.json", txn.ID)
	ref, err := i.store.WriteObject(ctx, objectName, "application/json", payload)
	if err != nil {
		return "", fmt.Errorf("store certificate: %w", err)
	}
	return ref, nil
}

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:8]
}
