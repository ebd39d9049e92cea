package fees

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmoralesdev/brickvest-backend/internal/inventory"
	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
)

// Quote is a non-binding cost breakdown for buying shares. All amounts are
// minor units; nothing is persisted when quoting.
type Quote struct {
	PropertyID            uuid.UUID               `json:"property_id"`
	Shares                int64                   `json:"shares"`
	PricePerShareCents    int64                   `json:"price_per_share_cents"`
	InvestmentAmountCents int64                   `json:"investment_amount_cents"`
	PlatformFeeCents      int64                   `json:"platform_fee_cents"`
	ProcessingFeeCents    int64                   `json:"processing_fee_cents"`
	TotalAmountCents      int64                   `json:"total_amount_cents"`
	OwnershipPpm          int64                   `json:"ownership_ppm"`
	Availability          *inventory.Availability `json:"availability"`
}

// Service prices share purchases against the current inventory position.
type Service interface {
	Quote(ctx context.Context, propertyID uuid.UUID, shares int64) (*Quote, error)
}

type service struct {
	inventory inventory.Service
	policy    Policy
}

// NewService builds a fee calculator with the required dependencies.
func NewService(inv inventory.Service, policy Policy) (Service, error) {
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if policy == nil {
		return nil, fmt.Errorf("fee policy required")
	}
	return &service{inventory: inv, policy: policy}, nil
}

func (s *service) Quote(ctx context.Context, propertyID uuid.UUID, shares int64) (*Quote, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	if shares <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shares must be positive")
	}

	avail, err := s.inventory.Availability(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if shares > avail.AvailableShares {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientInventory, "requested shares exceed availability").
			WithDetails(map[string]int64{
				"requested_shares": shares,
				"available_shares": avail.AvailableShares,
			})
	}

	return BuildQuote(avail, shares, s.policy), nil
}

// BuildQuote derives the full cost breakdown from an availability snapshot.
// Exposed so the reservation path can re-price against a locked read without
// a second availability query.
func BuildQuote(avail *inventory.Availability, shares int64, policy Policy) *Quote {
	amount := shares * avail.SharePriceCents
	platformFee := decimal.NewFromInt(amount).
		Mul(policy.PlatformFeePercent()).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
	processingFee := policy.ProcessingFeeCents()

	return &Quote{
		PropertyID:            avail.PropertyID,
		Shares:                shares,
		PricePerShareCents:    avail.SharePriceCents,
		InvestmentAmountCents: amount,
		PlatformFeeCents:      platformFee,
		ProcessingFeeCents:    processingFee,
		TotalAmountCents:      amount + platformFee + processingFee,
		OwnershipPpm:          OwnershipPpm(shares, avail.TotalShares),
		Availability:          avail,
	}
}

// OwnershipPpm converts a share count into parts-per-million of the property
// using round-half-up division, so 2 of 3 shares is 666667 rather than the
// truncated 666666. The stake is written once at creation and never
// recomputed.
func OwnershipPpm(shares, totalShares int64) int64 {
	if totalShares <= 0 {
		return 0
	}
	return (shares*models.OwnershipScale + totalShares/2) / totalShares
}
